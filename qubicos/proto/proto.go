// Package proto defines the message kinds and payload codecs spoken
// over kernel endpoints.
package proto

// Kind identifies the message type carried in kernel.Message.Kind.
type Kind uint16

const (
	MsgLogLine Kind = iota + 1
	MsgError
	MsgTermWrite
	MsgTermClear
	MsgGate
	MsgGateResp
	MsgMeasure
	MsgMeasureResp
	MsgProbe
	MsgProbeResp
	MsgReset
	MsgResetResp
	MsgState
)

func (k Kind) String() string {
	switch k {
	case MsgLogLine:
		return "log_line"
	case MsgError:
		return "error"
	case MsgTermWrite:
		return "term_write"
	case MsgTermClear:
		return "term_clear"
	case MsgGate:
		return "gate"
	case MsgGateResp:
		return "gate_resp"
	case MsgMeasure:
		return "measure"
	case MsgMeasureResp:
		return "measure_resp"
	case MsgProbe:
		return "probe"
	case MsgProbeResp:
		return "probe_resp"
	case MsgReset:
		return "reset"
	case MsgResetResp:
		return "reset_resp"
	case MsgState:
		return "state"
	default:
		return "unknown"
	}
}

// ErrCode is a generic error category for MsgError responses.
type ErrCode uint16

const (
	ErrUnknown ErrCode = iota
	ErrBadMessage
	ErrBusy
	ErrInternal
)

func (c ErrCode) String() string {
	switch c {
	case ErrUnknown:
		return "unknown"
	case ErrBadMessage:
		return "bad_message"
	case ErrBusy:
		return "busy"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}
