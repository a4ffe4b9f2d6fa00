package bus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Request verbs.
const (
	VerbRecord  = "record"
	VerbStop    = "stop"
	VerbText    = "text"
	VerbDraft   = "draft"
	VerbSubmit  = "submit"
	VerbStatus  = "status"
	VerbNotes   = "notes"
	VerbDelete  = "delete"
	VerbVersion = "version"
	VerbQuit    = "quit"
)

// Error codes carried by ERR responses.
const (
	CodeUnavailable        = "unavailable"
	CodeFeatureUnavailable = "feature_unavailable"
	CodeNotFound           = "not_found"
	CodeBadRequest         = "bad_request"
	CodeUnknown            = "unknown"
	CodeInternal           = "internal"
)

// Response kinds.
const (
	KindOK     = "OK"
	KindStatus = "STATUS"
	KindNotes  = "NOTES"
	KindErr    = "ERR"
)

var ErrMalformed = errors.New("malformed message")

type Request struct {
	Verb string
	Arg  string
}

// FormatRequest renders a request line without the trailing newline. The
// argument is Go-quoted so it may contain spaces and newlines.
func FormatRequest(verb, arg string) string {
	if arg == "" {
		return verb
	}
	return verb + " " + strconv.Quote(arg)
}

// ParseRequest is the inverse of FormatRequest. An unquoted argument is taken
// verbatim.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Request{}, fmt.Errorf("%w: empty request", ErrMalformed)
	}

	verb, rest, _ := strings.Cut(line, " ")
	req := Request{Verb: verb}
	if rest == "" {
		return req, nil
	}

	if strings.HasPrefix(rest, `"`) {
		arg, err := strconv.Unquote(rest)
		if err != nil {
			return Request{}, fmt.Errorf("%w: bad quoted argument: %v", ErrMalformed, err)
		}
		req.Arg = arg
		return req, nil
	}
	req.Arg = strings.TrimSpace(rest)
	return req, nil
}

type Response struct {
	Kind string
	Body string
}

// ResponseError is an ERR response from the daemon.
type ResponseError struct {
	Code    string
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// IsCode reports whether err is a ResponseError with the given code.
func IsCode(err error, code string) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Code == code
}

func FormatOK(body string) string {
	if body == "" {
		return KindOK
	}
	return KindOK + " " + body
}

func FormatError(code, msg string) string {
	return fmt.Sprintf("%s %s: %s", KindErr, code, oneLine(msg))
}

// ParseResponse splits a response line into its kind and body. ERR lines
// are returned as a *ResponseError.
func ParseResponse(line string) (Response, error) {
	line = strings.TrimRight(line, "\r\n")
	kind, body, _ := strings.Cut(line, " ")

	switch kind {
	case KindOK, KindStatus, KindNotes:
		return Response{Kind: kind, Body: body}, nil
	case KindErr:
		code, msg, _ := strings.Cut(body, ":")
		return Response{Kind: kind, Body: body}, &ResponseError{Code: strings.TrimSpace(code), Message: strings.TrimSpace(msg)}
	}
	return Response{}, fmt.Errorf("%w: unexpected response %q", ErrMalformed, line)
}

type Status struct {
	Mode  string
	Draft string
}

func FormatStatus(s Status) string {
	return fmt.Sprintf("%s mode=%s draft=%s", KindStatus, s.Mode, strconv.Quote(s.Draft))
}

// ParseStatus parses the body of a STATUS response.
func ParseStatus(body string) (Status, error) {
	modePart, draftPart, ok := strings.Cut(body, " ")
	if !ok || !strings.HasPrefix(modePart, "mode=") || !strings.HasPrefix(draftPart, "draft=") {
		return Status{}, fmt.Errorf("%w: bad status %q", ErrMalformed, body)
	}
	draft, err := strconv.Unquote(strings.TrimPrefix(draftPart, "draft="))
	if err != nil {
		return Status{}, fmt.Errorf("%w: bad status draft: %v", ErrMalformed, err)
	}
	return Status{Mode: strings.TrimPrefix(modePart, "mode="), Draft: draft}, nil
}

// FormatNotes renders v (a list of notes) as a single NOTES line.
func FormatNotes(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return KindNotes + " " + string(data), nil
}

// ParseNotes decodes the body of a NOTES response into v.
func ParseNotes(body string, v any) error {
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("%w: bad notes payload: %v", ErrMalformed, err)
	}
	return nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
