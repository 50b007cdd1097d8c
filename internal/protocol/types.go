package protocol

// Frame type ranges. A single dispatcher routes by range without any
// per-transport knowledge of which handler owns which byte.
const (
	TypeOtaBegin byte = 0x01
	TypeOtaData  byte = 0x02
	TypeOtaEnd   byte = 0x03
	TypeOtaAck   byte = 0x04
	TypeOtaAbort byte = 0x05

	TypeTraceStart  byte = 0x10
	TypeTraceStop   byte = 0x11
	TypeTraceDump   byte = 0x12
	TypeTraceData   byte = 0x13
	TypeTraceEnd    byte = 0x14
	TypeTraceClear  byte = 0x15
	TypeTraceStatus byte = 0x16
	TypeTraceAck    byte = 0x17

	TypeConfigListFeaturesReq byte = 0x20
	TypeConfigListFeaturesRsp byte = 0x21
	TypeConfigSetFeatureReq   byte = 0x22
	TypeConfigSetFeatureRsp   byte = 0x23
	TypeConfigGetFeatureReq   byte = 0x24
	TypeConfigGetFeatureRsp   byte = 0x25

	// TypeConfigArmReq/Rsp let host tooling (the fleet gateway) arm a
	// pod's game engine over the same wired transport used for OTA/trace,
	// rather than over the radio ArmTouch message peers use on each other.
	TypeConfigArmReq byte = 0x26
	TypeConfigArmRsp byte = 0x27
)

// InRange reports whether frameType falls within [lo, hi] inclusive, the
// primitive the dispatcher uses to route by type range.
func InRange(frameType, lo, hi byte) bool {
	return frameType >= lo && frameType <= hi
}

const (
	OtaRangeLo = TypeOtaBegin
	OtaRangeHi = TypeOtaAbort

	TraceRangeLo = TypeTraceStart
	TraceRangeHi = TypeTraceAck

	ConfigRangeLo = TypeConfigListFeaturesReq
	ConfigRangeHi = TypeConfigArmRsp
)
