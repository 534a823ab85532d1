package protocol

const (
	MagicByte0 byte = 0x5A
	MagicByte1 byte = 0x00
	MagicByte3 byte = 0x00

	LengthOffset    = 2
	ServiceIDOffset = 4
	CommandIDOffset = 5
	PayloadOffset   = 6

	// LengthOverhead is added to the length byte to get the total frame size.
	LengthOverhead   = 5
	MinHeaderBytes   = 7
	MinSplitHexChars = MinHeaderBytes * 2
	TrailerBytes     = 2

	PrintablePlaceholder = '.'

	RelayLogType   = "log"
	RelayPingType  = "ping"
	RelayPongType  = "pong"
	RelayErrorType = "error"
)

// ExpectedMagic is the signature read from positions 0, 1 and 3.
var ExpectedMagic = [3]byte{MagicByte0, MagicByte1, MagicByte3}
