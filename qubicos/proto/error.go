package proto

import "encoding/binary"

// ErrorPayload encodes a generic error response payload.
//
// Layout (little-endian):
//   - u16: code
//   - u16: ref kind (the request kind that failed)
//   - u32: request id (0 when unknown)
func ErrorPayload(code ErrCode, ref Kind, requestID uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(code))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(ref))
	binary.LittleEndian.PutUint32(buf[4:8], requestID)
	return buf
}

// DecodeErrorPayload decodes an ErrorPayload.
func DecodeErrorPayload(b []byte) (code ErrCode, ref Kind, requestID uint32, ok bool) {
	if len(b) != 8 {
		return 0, 0, 0, false
	}
	code = ErrCode(binary.LittleEndian.Uint16(b[0:2]))
	ref = Kind(binary.LittleEndian.Uint16(b[2:4]))
	requestID = binary.LittleEndian.Uint32(b[4:8])
	return code, ref, requestID, true
}
