// Package protocol implements the line-oriented wire protocol spoken by
// vehicle control clients.
//
// A frame is a single CRLF-terminated line of five pipe-delimited fields:
//
//	TYPE|TIMESTAMP|TOKEN|DATA|CHECKSUM
//
// The checksum field is carried verbatim but never computed nor verified; it
// exists for compatibility with clients that send it. Responses always carry
// the literal placeholder "CHECKSUM".
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vehiclehub-io/vehiclehub/internal/hub/core/model"
)

// Delimiter terminates every frame on the wire.
const Delimiter = "\r\n"

const fieldSep = "|"

// ChecksumPlaceholder fills the checksum field of every server frame.
const ChecksumPlaceholder = "CHECKSUM"

// Message types understood by the hub.
const (
	TypeAuthRequest      = "AUTH_REQUEST"
	TypeCommandRequest   = "COMMAND_REQUEST"
	TypeListUsersRequest = "LIST_USERS_REQUEST"

	TypeAuthResponse      = "AUTH_RESPONSE"
	TypeCommandResponse   = "COMMAND_RESPONSE"
	TypeListUsersResponse = "LIST_USERS_RESPONSE"
	TypeTelemetry         = "TELEMETRY"
	TypeError             = "ERROR"
)

// Status codes embedded in the DATA field.
const (
	StatusOK           = 200
	StatusBadRequest   = 400
	StatusUnauthorized = 401
)

// Status messages. Spanish for compatibility with the deployed clients.
const (
	MsgCommandProcessed = "Comando procesado"
	MsgUnauthorized     = "No autorizado"
	MsgInvalidMessage   = "Mensaje inválido"
)

// ErrMalformedFrame reports a line that does not carry exactly five fields.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is a decoded protocol message.
type Frame struct {
	Type      string
	Timestamp int64
	Token     string
	Data      string
	Checksum  string
}

// Parse decodes a single line (without the trailing CRLF) into a Frame.
// The timestamp is decoded leniently: clients that send a non-numeric value
// get a zero timestamp rather than a rejection, matching the tolerance of
// the deployed protocol.
func Parse(line string) (*Frame, error) {
	fields := strings.Split(line, fieldSep)
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: got %d fields, want 5", ErrMalformedFrame, len(fields))
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("%w: empty message type", ErrMalformedFrame)
	}

	ts, _ := strconv.ParseInt(fields[1], 10, 64)

	return &Frame{
		Type:      fields[0],
		Timestamp: ts,
		Token:     fields[2],
		Data:      fields[3],
		Checksum:  fields[4],
	}, nil
}

// Encode renders the frame as a CRLF-terminated wire line.
func (f *Frame) Encode() string {
	return strings.Join([]string{
		f.Type,
		strconv.FormatInt(f.Timestamp, 10),
		f.Token,
		f.Data,
		f.Checksum,
	}, fieldSep) + Delimiter
}

// SplitPair cuts a "left:right" DATA payload. Used for both
// "username:password" and "command:params"; the right side may be empty.
func SplitPair(data string) (left, right string) {
	left, right, _ = strings.Cut(data, ":")
	return left, right
}

func newResponse(msgType, tok, data string) *Frame {
	return &Frame{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
		Token:     tok,
		Data:      data,
		Checksum:  ChecksumPlaceholder,
	}
}

// NewAuthOK builds the response to a successful authentication. The issued
// token travels in the token field; DATA carries "<ROLE>:200".
func NewAuthOK(tok string, role model.Role) *Frame {
	return newResponse(TypeAuthResponse, tok, fmt.Sprintf("%s:%d", role, StatusOK))
}

// NewAuthRejected builds the response to a failed authentication.
func NewAuthRejected() *Frame {
	return newResponse(TypeAuthResponse, "NULL", fmt.Sprintf("ERROR:%d", StatusUnauthorized))
}

// NewCommandOK builds the response to an accepted control command.
func NewCommandOK() *Frame {
	return newResponse(TypeCommandResponse, "NULL", fmt.Sprintf("%d:%s", StatusOK, MsgCommandProcessed))
}

// NewCommandUnauthorized builds the response to a command from a client that
// is not an authenticated admin with a matching token.
func NewCommandUnauthorized() *Frame {
	return newResponse(TypeCommandResponse, "NULL", fmt.Sprintf("%d:%s", StatusUnauthorized, MsgUnauthorized))
}

// NewListUsers builds the response to LIST_USERS_REQUEST:
// "<count>:<comma separated usernames>".
func NewListUsers(usernames []string) *Frame {
	data := fmt.Sprintf("%d:%s", len(usernames), strings.Join(usernames, ","))
	return newResponse(TypeListUsersResponse, "NULL", data)
}

// NewUnauthorizedError builds the generic 401 ERROR frame.
func NewUnauthorizedError() *Frame {
	return newResponse(TypeError, "NULL", fmt.Sprintf("%d:%s", StatusUnauthorized, MsgUnauthorized))
}

// NewInvalidMessageError builds the 400 ERROR frame answered to malformed or
// unknown requests.
func NewInvalidMessageError() *Frame {
	return newResponse(TypeError, "NULL", fmt.Sprintf("%d:%s", StatusBadRequest, MsgInvalidMessage))
}

// NewTelemetry builds an unsolicited telemetry frame from a state snapshot.
func NewTelemetry(s model.VehicleState) *Frame {
	data := fmt.Sprintf("%.1f:%.1f:%.1f:%s:%.6f:%.6f",
		s.Speed, s.Battery, s.Temperature, s.Direction, s.Latitude, s.Longitude)
	return newResponse(TypeTelemetry, "NULL", data)
}

// NewAuthRequest builds a client-side authentication request.
func NewAuthRequest(username, password string) *Frame {
	return &Frame{
		Type:      TypeAuthRequest,
		Timestamp: time.Now().Unix(),
		Data:      username + ":" + password,
		Checksum:  ChecksumPlaceholder,
	}
}

// NewCommandRequest builds a client-side control command request.
func NewCommandRequest(tok string, command model.CommandType, params string) *Frame {
	data := string(command)
	if params != "" {
		data += ":" + params
	}
	return &Frame{
		Type:      TypeCommandRequest,
		Timestamp: time.Now().Unix(),
		Token:     tok,
		Data:      data,
		Checksum:  ChecksumPlaceholder,
	}
}

// NewListUsersRequest builds a client-side user listing request.
func NewListUsersRequest(tok string) *Frame {
	return &Frame{
		Type:      TypeListUsersRequest,
		Timestamp: time.Now().Unix(),
		Token:     tok,
		Checksum:  ChecksumPlaceholder,
	}
}
