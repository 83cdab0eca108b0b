package main

import "net/http"

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": app.config.Environment,
			"version":     app.config.Version,
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) indexHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"message": "welcome to the inkpost blogging API",
		"routes": []string{
			"POST /auth/signup",
			"POST /auth/signin",
			"GET /blogs",
			"GET /blogs/:id",
			"POST /blogs",
			"GET /blogs/user/me",
			"PUT /blogs/:id",
			"DELETE /blogs/:id",
		},
	}

	err := app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
