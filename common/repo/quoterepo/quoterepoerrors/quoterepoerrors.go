package quoterepoerrors

import "errors"

var ErrUnableToCreateQuote = errors.New("unable to persist quote")
