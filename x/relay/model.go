package relay

import "encoding/json"

// wire protocol labels
const (
	MessageEvent  = "EVENT"
	MessageReq    = "REQ"
	MessageClose  = "CLOSE"
	MessageOK     = "OK"
	MessageEOSE   = "EOSE"
	MessageNotice = "NOTICE"
	MessageClosed = "CLOSED"
)

// parseFrame splits a wire frame into its label and raw operands.
func parseFrame(data []byte) (string, []json.RawMessage, error) {
	var frame []json.RawMessage
	err := json.Unmarshal(data, &frame)
	if err != nil {
		return "", nil, err
	}
	if len(frame) == 0 {
		return "", nil, errEmptyFrame
	}

	var label string
	err = json.Unmarshal(frame[0], &label)
	if err != nil {
		return "", nil, err
	}

	return label, frame[1:], nil
}
