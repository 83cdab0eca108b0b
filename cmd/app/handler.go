package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/inkpost/internal/blogservice"
	"github.com/sushihentaime/inkpost/internal/common"
	"github.com/sushihentaime/inkpost/internal/userservice"
)

// authResponse is the body returned by signup and signin.
func authResponse(user *userservice.User, token *userservice.Token) envelope {
	return envelope{
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"token":      token.Plain,
		"expiry":     token.Expiry,
	}
}

func (app *application) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.SignUpRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.SignUp(r.Context(), input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, authResponse(user, token), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signInHandler(w http.ResponseWriter, r *http.Request) {
	var input signInRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, authResponse(user, token), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.CreateBlog(r.Context(), user.ID, input)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) getPublishedBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	blog, err := app.blogService.GetPublishedBlog(r.Context(), id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input blogservice.UpdateBlogRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	blog, err := app.blogService.UpdateBlog(r.Context(), user.ID, id, input)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	err = app.blogService.DeleteBlog(r.Context(), user.ID, id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPublishedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()

	query := blogservice.SearchQuery{
		Title:  qs.Get("title"),
		Tags:   qs.Get("tags"),
		Author: qs.Get("author"),
		Sort:   qs.Get("sort"),
		Order:  qs.Get("order"),
		Page:   app.readInt(qs, "page", blogservice.DefaultPage),
		Limit:  app.readInt(qs, "limit", blogservice.DefaultPageSize),
	}

	page, err := app.blogService.GetPublishedBlogs(r.Context(), query)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, page, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listOwnBlogsHandler(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	user := app.getUserContext(r)

	query := blogservice.OwnedQuery{
		State: qs.Get("state"),
		Page:  app.readInt(qs, "page", blogservice.DefaultPage),
		Limit: app.readInt(qs, "limit", blogservice.DefaultPageSize),
	}

	page, err := app.blogService.GetOwnedBlogs(r.Context(), user.ID, query)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, page, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
