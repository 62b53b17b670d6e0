package hidclient

import "encoding/binary"

// Frame kinds, identified by the first byte of a datagram sent to the
// virtual-HID service.
const (
	frameKindHeartbeat byte = 0x00
	frameKindUserData  byte = 0x01
)

// magic bytes and wire version identifying the user-data protocol.
const (
	magicByte1     = 'c'
	magicByte2     = 'p'
	protocolVersion uint16 = 5
)

// RequestType identifies a user-data request to the service.
type RequestType byte

// Exhaustive request types understood by the service. 8-11 are reserved
// by the service for functionality this core does not use; they are
// named so a future caller does not have to guess at unused ids.
const (
	ReqInitKeyboard      RequestType = 1
	ReqTerminateKeyboard RequestType = 2
	ReqResetKeyboard     RequestType = 3
	ReqInitPointing      RequestType = 4
	ReqTerminatePointing RequestType = 5
	ReqResetPointing     RequestType = 6
	ReqPostKeyboard      RequestType = 7
	_reqReserved8        RequestType = 8
	_reqReserved9        RequestType = 9
	_reqReserved10       RequestType = 10
	_reqReserved11       RequestType = 11
	ReqPostPointing      RequestType = 12
)

// ResponseType identifies a response observed on the client's datagram
// socket.
type ResponseType byte

const (
	RespDriverActivated     ResponseType = 1
	RespDriverConnected     ResponseType = 2
	RespVersionMismatch     ResponseType = 3
	RespKeyboardReady       ResponseType = 4
	RespPointingReady       ResponseType = 5
)

// heartbeatDeadlineMs is the deadline, in milliseconds, advertised in every
// heartbeat frame. Absence of heartbeats within this window is how the
// service detects client death.
const heartbeatDeadlineMs = 5000

// buildHeartbeatFrame returns the 5-byte heartbeat frame.
func buildHeartbeatFrame() []byte {
	frame := make([]byte, 5)
	frame[0] = frameKindHeartbeat
	binary.LittleEndian.PutUint32(frame[1:], heartbeatDeadlineMs)
	return frame
}

// buildUserDataFrame returns a user-data frame wrapping payload.
func buildUserDataFrame(reqType RequestType, payload []byte) []byte {
	frame := make([]byte, 0, 6+len(payload))
	frame = append(frame, frameKindUserData, magicByte1, magicByte2)
	verBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(verBuf, protocolVersion)
	frame = append(frame, verBuf...)
	frame = append(frame, byte(reqType))
	frame = append(frame, payload...)
	return frame
}

// parseResponse extracts the ResponseType from a frame received on the
// client's datagram socket. Only user-data frames carry a response type;
// other frame kinds are reported as ok=false.
func parseResponse(frame []byte) (ResponseType, bool) {
	if len(frame) < 6 {
		return 0, false
	}
	if frame[0] != frameKindUserData || frame[1] != magicByte1 || frame[2] != magicByte2 {
		return 0, false
	}
	return ResponseType(frame[5]), true
}
