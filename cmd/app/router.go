package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/", app.indexHandler)
	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/auth/signup", app.signUpHandler)
	router.HandlerFunc(http.MethodPost, "/auth/signin", app.signInHandler)

	// blog service
	router.HandlerFunc(http.MethodGet, "/blogs", app.listPublishedBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/blogs/:id", app.getPublishedBlogHandler)
	router.HandlerFunc(http.MethodPut, "/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	// httprouter cannot register /blogs/user/me next to /blogs/:id.
	router.HandlerFunc(http.MethodGet, "/blogs/:id/me", app.userSegment(app.requireAuthUser(app.listOwnBlogsHandler)))

	return app.recoverPanic(app.logRequest(app.enableCORS(app.authenticate(router))))
}
