package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/expert-mapper/app"
	"github.com/mbolis/expert-mapper/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RealIP, middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Mount("/", ServePublicFiles(app.PublicDir))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Session(app.Sessions, app.SessionTTL))

		// question catalog
		r.Get("/questions", FetchQuestions)
		r.Get(`/questions/{id:^\d+$}`, GetQuestion)
		r.Get(`/questions/types/{type:^[1-4]$}`, QuestionsByType)

		// form state
		r.Get("/form", GetForm)
		r.Delete("/form", ResetForm)
		r.Patch("/form/step1", UpdateStep1)
		r.Put(`/form/steps/{step:^[2-4]$}/questions/{id:^\d+$}`, UpdateAnswer)
		r.Put("/form/step4/{field}", UpdateStep4Field)
		r.Get("/form/payload", PreviewPayload)
		r.Post("/form/submit", SubmitForm)

		// uploads
		r.Post("/files", UploadFiles)
		r.Post("/files/presign", PresignFile)

		r.Get("/status", GetStatus)
	})

	if app.BearerServer != nil {
		api.Post("/login", Login(app))
		api.Post("/refresh", Refresh(app))

		api.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.Admin(app.TokenSecret))
			r.Get("/submissions", ListSubmissions(app))
		})
	}

	return api
}
