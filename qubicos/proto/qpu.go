package proto

import (
	"encoding/binary"
	"math"

	"qubic/qubicos/qsim"
)

// GateCode selects a unitary gate in MsgGate requests.
type GateCode uint8

const (
	GateX GateCode = iota + 1
	GateY
	GateZ
	GateH
	GateT
	GateCX
)

func (g GateCode) String() string {
	switch g {
	case GateX:
		return "X"
	case GateY:
		return "Y"
	case GateZ:
		return "Z"
	case GateH:
		return "H"
	case GateT:
		return "T"
	case GateCX:
		return "CX"
	default:
		return "?"
	}
}

// NoControl marks a single-qubit gate in the control byte.
const NoControl uint8 = 0xFF

// GatePayload encodes a MsgGate request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: gate code
//   - u8: qubit (target)
//   - u8: control (NoControl for single-qubit gates)
func GatePayload(requestID uint32, gate GateCode, qubit, control uint8) []byte {
	buf := make([]byte, 7)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(gate)
	buf[5] = qubit
	buf[6] = control
	return buf
}

func DecodeGatePayload(b []byte) (requestID uint32, gate GateCode, qubit, control uint8, ok bool) {
	if len(b) != 7 {
		return 0, 0, 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), GateCode(b[4]), b[5], b[6], true
}

// GateRespPayload encodes a MsgGateResp response (request echo).
func GateRespPayload(requestID uint32, gate GateCode, qubit, control uint8) []byte {
	return GatePayload(requestID, gate, qubit, control)
}

func DecodeGateRespPayload(b []byte) (requestID uint32, gate GateCode, qubit, control uint8, ok bool) {
	return DecodeGatePayload(b)
}

// MeasurePayload encodes a MsgMeasure request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: qubit
func MeasurePayload(requestID uint32, qubit uint8) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = qubit
	return buf
}

func DecodeMeasurePayload(b []byte) (requestID uint32, qubit uint8, ok bool) {
	if len(b) != 5 {
		return 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), b[4], true
}

// MeasureRespPayload encodes a MsgMeasureResp response.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: qubit
//   - u8: outcome (0/1)
//   - u8: measured flag (0 when the qubit was out of range)
//   - f32: P(qubit=1) after collapse
func MeasureRespPayload(requestID uint32, qubit, outcome uint8, measured bool, p1 float32) []byte {
	buf := make([]byte, 11)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = qubit
	buf[5] = outcome
	if measured {
		buf[6] = 1
	}
	binary.LittleEndian.PutUint32(buf[7:11], math.Float32bits(p1))
	return buf
}

func DecodeMeasureRespPayload(b []byte) (requestID uint32, qubit, outcome uint8, measured bool, p1 float32, ok bool) {
	if len(b) != 11 {
		return 0, 0, 0, false, 0, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	qubit = b[4]
	outcome = b[5]
	measured = b[6] != 0
	p1 = math.Float32frombits(binary.LittleEndian.Uint32(b[7:11]))
	return requestID, qubit, outcome, measured, p1, true
}

// ProbeCode selects a read-only engine query in MsgProbe requests.
type ProbeCode uint8

const (
	// ProbeBasis: arg is a basis-state index; value is its probability.
	ProbeBasis ProbeCode = iota + 1
	// ProbeQubitOne: arg is a qubit; value is P(qubit=1).
	ProbeQubitOne
	// ProbeMax: value is the maximum basis-state probability.
	ProbeMax
	// ProbeRegister: value is the register size in qubits.
	ProbeRegister
	// ProbeLast: arg in the response is the last measured qubit, value
	// its outcome; the flag byte is 0 when nothing was measured yet.
	ProbeLast
)

func (p ProbeCode) String() string {
	switch p {
	case ProbeBasis:
		return "basis"
	case ProbeQubitOne:
		return "qubit_one"
	case ProbeMax:
		return "max"
	case ProbeRegister:
		return "register"
	case ProbeLast:
		return "last"
	default:
		return "?"
	}
}

// ProbePayload encodes a MsgProbe request.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: probe code
//   - u8: argument (basis index or qubit; 0 when unused)
func ProbePayload(requestID uint32, code ProbeCode, arg uint8) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(code)
	buf[5] = arg
	return buf
}

func DecodeProbePayload(b []byte) (requestID uint32, code ProbeCode, arg uint8, ok bool) {
	if len(b) != 6 {
		return 0, 0, 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), ProbeCode(b[4]), b[5], true
}

// ProbeRespPayload encodes a MsgProbeResp response.
//
// Layout (little-endian):
//   - u32: request id
//   - u8: probe code (echo)
//   - u8: argument (echo; last measured qubit for ProbeLast)
//   - u8: flag (ProbeLast: 1 when a measurement exists)
//   - f32: value
func ProbeRespPayload(requestID uint32, code ProbeCode, arg uint8, flag bool, value float32) []byte {
	buf := make([]byte, 11)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	buf[4] = uint8(code)
	buf[5] = arg
	if flag {
		buf[6] = 1
	}
	binary.LittleEndian.PutUint32(buf[7:11], math.Float32bits(value))
	return buf
}

func DecodeProbeRespPayload(b []byte) (requestID uint32, code ProbeCode, arg uint8, flag bool, value float32, ok bool) {
	if len(b) != 11 {
		return 0, 0, 0, false, 0, false
	}
	requestID = binary.LittleEndian.Uint32(b[0:4])
	code = ProbeCode(b[4])
	arg = b[5]
	flag = b[6] != 0
	value = math.Float32frombits(binary.LittleEndian.Uint32(b[7:11]))
	return requestID, code, arg, flag, value, true
}

// ResetPayload encodes a MsgReset request.
//
// Layout (little-endian):
//   - u32: request id
func ResetPayload(requestID uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf[0:4], requestID)
	return buf
}

func DecodeResetPayload(b []byte) (requestID uint32, ok bool) {
	if len(b) != 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b[0:4]), true
}

// ResetRespPayload encodes a MsgResetResp response.
func ResetRespPayload(requestID uint32) []byte {
	return ResetPayload(requestID)
}

func DecodeResetRespPayload(b []byte) (requestID uint32, ok bool) {
	return DecodeResetPayload(b)
}

// statePayloadLen: register size + one f32 per basis state + last
// measurement (qubit, outcome, present).
const statePayloadLen = 1 + 4*qsim.States + 3

// StatePayload encodes a MsgState render snapshot.
//
// Layout (little-endian):
//   - u8: register size in qubits
//   - f32 x States: basis-state probabilities in index order
//   - u8: last measured qubit
//   - u8: last outcome (0/1)
//   - u8: last-measurement present flag
func StatePayload(probs *[qsim.States]float32, lastQubit, lastOutcome uint8, hasLast bool) []byte {
	buf := make([]byte, statePayloadLen)
	buf[0] = qsim.Qubits
	for i := 0; i < qsim.States; i++ {
		binary.LittleEndian.PutUint32(buf[1+4*i:5+4*i], math.Float32bits(probs[i]))
	}
	buf[statePayloadLen-3] = lastQubit
	buf[statePayloadLen-2] = lastOutcome
	if hasLast {
		buf[statePayloadLen-1] = 1
	}
	return buf
}

func DecodeStatePayload(b []byte, probs *[qsim.States]float32) (lastQubit, lastOutcome uint8, hasLast, ok bool) {
	if len(b) != statePayloadLen || b[0] != qsim.Qubits {
		return 0, 0, false, false
	}
	for i := 0; i < qsim.States; i++ {
		probs[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[1+4*i : 5+4*i]))
	}
	return b[statePayloadLen-3], b[statePayloadLen-2], b[statePayloadLen-1] != 0, true
}
