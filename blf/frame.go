package blf

// CanFrame is one decoded CAN frame with an absolute wall-clock timestamp
// restored from the BLF file's start time plus the frame's relative tick
// count (spec §3).
type CanFrame struct {
	Timestamp     float64 // seconds, absolute wall-clock
	ArbitrationID uint32  // lower 29 bits meaningful
	IsExtendedID  bool
	IsRemoteFrame bool
	IsRx          bool
	IsErrorFrame  bool
	DLC           uint8  // 0-15, declared length code
	Data          []byte // truncated to min(DLC, 8)
	Channel       uint8  // 0-based bus index
}
