package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/log"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Logf(level, "%s: %s", code, errMsg)
	http.Error(w, errMsg, status)
}

// BackendError reports a failed call to the mapper backend as a JSON body.
// A backend status is relayed as is, anything else becomes a 502.
func BackendError(w http.ResponseWriter, r *http.Request, code string, err error) {
	status := http.StatusBadGateway
	body := map[string]any{"error": err.Error()}

	var se *api.StatusError
	if errors.As(err, &se) {
		status = se.StatusCode
		if len(se.Body) > 0 {
			body["backend"] = string(se.Body)
		}
	}

	log.Debugf("%s: %s", code, err)
	render.Status(r, status)
	render.JSON(w, r, body)
}
