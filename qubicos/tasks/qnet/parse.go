package qnet

import (
	"errors"
	"strconv"
	"strings"

	"qubic/qubicos/proto"
)

// Request lines are &-separated key=value pairs, e.g.
//
//	op=gate&g=h&q=0
//	op=gate&g=cx&c=0&q=1
//	op=measure&q=2
//	op=probe&k=basis&i=3
//	op=probe&k=qubit&q=1
//	op=probe&k=max
//	op=probe&k=last
//	op=probe&k=register
//	op=reset
type opKind uint8

const (
	opNone opKind = iota
	opGate
	opMeasure
	opProbe
	opReset
)

type request struct {
	op      opKind
	gate    proto.GateCode
	qubit   uint8
	control uint8
	probe   proto.ProbeCode
	arg     uint8
}

var (
	errEmptyRequest = errors.New("empty request")
	errBadRequest   = errors.New("bad request")
)

func parseRequest(line string) (request, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return request{}, errEmptyRequest
	}

	fields := map[string]string{}
	for _, kv := range strings.Split(line, "&") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return request{}, errBadRequest
		}
		fields[k] = v
	}

	req := request{control: proto.NoControl}
	switch fields["op"] {
	case "gate":
		req.op = opGate
		gate, ok := gateByName(fields["g"])
		if !ok {
			return request{}, errors.New("unknown gate: " + fields["g"])
		}
		req.gate = gate
		q, err := parseQubit(fields, "q")
		if err != nil {
			return request{}, err
		}
		req.qubit = q
		if gate == proto.GateCX {
			c, err := parseQubit(fields, "c")
			if err != nil {
				return request{}, err
			}
			req.control = c
		}

	case "measure":
		req.op = opMeasure
		q, err := parseQubit(fields, "q")
		if err != nil {
			return request{}, err
		}
		req.qubit = q

	case "probe":
		req.op = opProbe
		switch fields["k"] {
		case "basis":
			req.probe = proto.ProbeBasis
			i, err := parseQubit(fields, "i")
			if err != nil {
				return request{}, err
			}
			req.arg = i
		case "qubit":
			req.probe = proto.ProbeQubitOne
			q, err := parseQubit(fields, "q")
			if err != nil {
				return request{}, err
			}
			req.arg = q
		case "max":
			req.probe = proto.ProbeMax
		case "last":
			req.probe = proto.ProbeLast
		case "register":
			req.probe = proto.ProbeRegister
		default:
			return request{}, errors.New("unknown probe: " + fields["k"])
		}

	case "reset":
		req.op = opReset

	default:
		return request{}, errors.New("unknown op: " + fields["op"])
	}

	return req, nil
}

func gateByName(name string) (proto.GateCode, bool) {
	switch name {
	case "x":
		return proto.GateX, true
	case "y":
		return proto.GateY, true
	case "z":
		return proto.GateZ, true
	case "h":
		return proto.GateH, true
	case "t":
		return proto.GateT, true
	case "cx":
		return proto.GateCX, true
	}
	return 0, false
}

func parseQubit(fields map[string]string, key string) (uint8, error) {
	v, ok := fields[key]
	if !ok {
		return 0, errors.New("missing field: " + key)
	}
	n, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return 0, errors.New("bad field " + key + ": " + v)
	}
	return uint8(n), nil
}
