package mc33879

const (
	CommRequestCharacter = '>'
	CommReportCharacter  = '<'
	CommEndCharacter     = '\n'
	CommAltEndCharacter  = '\r'
	CommFrameLen         = 7 // '>' + 4 hex digits + "\r\n"
	CommReportLen        = 5 // '<' + 4 hex digits, line endings stripped
	CommRxBufferLen      = 128
)

// EmergencyStop disconnects all eight outputs at once.
// **NOTE**: the upper 8 bits of the command word gate part of the fault
// detection circuitry, see the MC33879 datasheet before changing the value.
const EmergencyStop uint16 = 0x0000

// NoFault is the report value for a device with all outputs healthy.
const NoFault uint16 = 0x0000

const (
	Output1 Channel = iota + 1
	Output2
	Output3
	Output4
	Output5
	Output6
	Output7
	Output8
)

// OutputCount is fixed by the MC33879 silicon.
const OutputCount = 8
