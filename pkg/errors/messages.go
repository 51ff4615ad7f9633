package errors

// Messages used when the service answers an error status without a body.
const (
	MsgUnauthorized   = "The request you are making requires authorization. Please check that you have permissions & that you've set your API key."
	MsgInvalidRequest = "The request was invalid"
	MsgNotFound       = "The URI requested is invalid or the resource requested does not exist."
	MsgInternalServer = "Whoops! Something is broken."
	MsgUnknown        = "An unknown error occurred"
)

// Messages reported for errors recognised by their service message.
const (
	MsgAPIKeyInvalid = "The API key you sent is invalid! Please pass the key provided with your account to the client."
	MsgJSONParse     = "Unable to parse the input. Please make sure it matches the expected input of the algorithm and can be parsed into JSON."
)

// Service message texts with a dedicated code.
//
// The service does not send a stable error identifier, so these are matched
// on exact wording and break if the service rephrases them.
const (
	ServiceMsgAuthorizationRequired = "authorization required"
	ServiceMsgJSONParse             = "Failed to parse input, input did not parse as valid json"
)

type messageKind struct {
	code    Code
	message string
}

var messageKinds = map[string]messageKind{
	ServiceMsgAuthorizationRequired: {ErrCodeAPIKeyInvalid, MsgAPIKeyInvalid},
	ServiceMsgJSONParse:             {ErrCodeJSONParse, MsgJSONParse},
}

// CodeForMessage looks up the code for an exact service error message.
// It returns the code, the message to report to users, and whether the text
// was recognised.
func CodeForMessage(serviceMsg string) (Code, string, bool) {
	k, ok := messageKinds[serviceMsg]
	if !ok {
		return "", "", false
	}
	return k.code, k.message, true
}
