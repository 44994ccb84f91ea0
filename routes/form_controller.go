package routes

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/expert-mapper/api"
	"github.com/mbolis/expert-mapper/form"
	"github.com/mbolis/expert-mapper/httpx"
	"github.com/mbolis/expert-mapper/log"
	"github.com/mbolis/expert-mapper/model"
	"github.com/mbolis/expert-mapper/session"
)

const maxUploadMemory = 32 << 20

func formSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		httpx.LogStatus(w, http.StatusInternalServerError, log.ErrorLevel, "session.missing")
	}
	return s, ok
}

// FetchQuestions (re)loads the catalog. The uid query parameter of the
// form page identifies the applicant.
func FetchQuestions(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}

	err := s.FetchQuestions(r.Context(), r.URL.Query().Get("uid"))
	resp := map[string]any{
		"questions": s.Catalog().Questions(),
	}
	if err != nil {
		resp["error"] = s.Catalog().Err()
		render.Status(r, http.StatusBadGateway)
	}
	render.JSON(w, r, resp)
}

func GetQuestion(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	questionId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return
	}

	q, found := s.Catalog().ByID(questionId)
	if !found {
		httpx.LogNotFound(w, "get_question", questionId)
		return
	}
	render.JSON(w, r, q)
}

func QuestionsByType(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	typeId, err := strconv.Atoi(chi.URLParam(r, "type"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.type")
		return
	}

	render.JSON(w, r, map[string]any{
		"questions": s.Catalog().ByType(model.QuestionType(typeId)),
	})
}

func GetForm(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.Snapshot())
}

func UpdateStep1(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}

	patch := model.Step1Patch{}
	err := render.DecodeJSON(r.Body, &patch)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return
	}

	s.UpdateStep1(patch)
	render.JSON(w, r, s.Snapshot().Step1)
}

func UpdateAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.step")
		return
	}
	questionId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return
	}

	answer := model.Answer{}
	err = render.DecodeJSON(r.Body, &answer)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
		return
	}

	err = s.Update(form.Step(step), questionId, answer)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.update", "%s", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func UpdateStep4Field(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	field := chi.URLParam(r, "field")

	var value any
	var err error
	switch field {
	case form.FieldUploadedFiles:
		var files []model.UploadedFile
		err = render.DecodeJSON(r.Body, &files)
		value = files
	case form.FieldSendEmailCopy:
		var send bool
		err = render.DecodeJSON(r.Body, &send)
		value = send
	default:
		httpx.LogNotFound(w, "form.step4_field", field)
		return
	}
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return
	}

	err = s.UpdateStep4Field(field, value)
	if err != nil {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "form.update_step4", "%s", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ResetForm(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	s.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func PreviewPayload(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.Payload())
}

func SubmitForm(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}

	body, err := s.Submit(r.Context())
	if err != nil {
		httpx.BackendError(w, r, "form.submit", err)
		return
	}
	render.JSON(w, r, body)
}

func UploadFiles(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}

	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_multipart")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[api.FilesField]
	if len(headers) == 0 {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.files", "no %s in request", api.FilesField)
		return
	}

	files := make([]api.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			httpx.LogInternalError(w, "request.files.open", err)
			return
		}
		defer func(f multipart.File) { f.Close() }(f)
		files = append(files, api.File{Name: h.Filename, Content: f})
	}

	body, err := s.UploadFiles(r.Context(), files)
	if err != nil {
		httpx.BackendError(w, r, "files.upload", err)
		return
	}
	render.JSON(w, r, body)
}

func PresignFile(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}

	meta := api.FileMeta{}
	err := render.DecodeJSON(r.Body, &meta)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
		return
	}
	if meta.Name == "" || meta.Type == "" {
		httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.file_meta", "file-name and file-type are required")
		return
	}

	body, err := s.PresignedURL(r.Context(), meta)
	if err != nil {
		httpx.BackendError(w, r, "files.presign", err)
		return
	}
	render.JSON(w, r, body)
}

func GetStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := formSession(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, s.Status())
}
