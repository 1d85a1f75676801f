package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/soundshelf/soundshelf/library"
	"github.com/soundshelf/soundshelf/server/resp"
	"github.com/soundshelf/soundshelf/server/util"
	"github.com/soundshelf/soundshelf/storage/record"
)

// LogAndWriteError logs an error with request context and maps known
// conditions to client responses. Validation problems carry their specific
// message back to the caller; storage failures stay generic.
func LogAndWriteError(w http.ResponseWriter, r *http.Request, op string, err error) {
	rl := util.FromContext(r.Context())
	if rl == nil {
		rl = util.WithRequest(log.Default(), r, "")
	}
	rl.Errorf("%s failed: %v", op, err)

	var verr *library.ValidationError
	var ferr *library.InvalidFileError
	var nerr *library.NotFoundError

	switch {
	case errors.As(err, &verr):
		resp.WriteInvalidRequest(w, verr.Error())
	case errors.As(err, &ferr):
		resp.WriteInvalidRequest(w, ferr.Error())
	case errors.As(err, &nerr):
		resp.WriteNotFound(w, nerr.Error())
	case errors.Is(err, record.ErrNotFound):
		resp.WriteNotFound(w, "not found")
	case errors.Is(err, record.ErrEmailTaken):
		resp.WriteConflict(w, "an account with that email already exists")
	default:
		resp.WriteInternalServerError(w, fmt.Sprintf("%s failed", op))
	}
}
