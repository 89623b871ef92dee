package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/bookstore/pkg/ctx"
)

type AuthController struct{}

func NewAuthController() *AuthController { return &AuthController{} }

type meView struct {
	User    interface{} `json:"user"`
	IsAdmin bool        `json:"isAdmin"`
	Cart    interface{} `json:"cart"`
}

// Me reports the visitor's session and cart, the state every page renders from.
func (ac *AuthController) Me(c *ctx.Context) {
	a := c.App()
	view := meView{Cart: cartView(a.Cart.Lines())}
	if u, ok := a.Auth.Me(); ok {
		view.User = u
		view.IsAdmin = u.IsAdmin()
	}
	c.Success(view)
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !c.BindJSON(&in) {
		return
	}
	user, err := c.App().Auth.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]interface{}{"user": user})
}

// Register creates the account; the visitor signs in afterwards.
func (ac *AuthController) Register(c *ctx.Context) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !c.BindJSON(&in) {
		return
	}
	if err := c.App().Auth.Register(c.Context(), in.Name, in.Email, in.Password); err != nil {
		c.Fail(err)
		return
	}
	c.Created("Registration successful. Please login.", nil)
}

func (ac *AuthController) Google(c *ctx.Context) {
	var in struct {
		Credential string `json:"credential" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}
	user, err := c.App().Auth.GoogleLogin(c.Context(), in.Credential)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]interface{}{"user": user})
}

// Logout always succeeds locally, whatever the backend answers.
func (ac *AuthController) Logout(c *ctx.Context) {
	c.App().Auth.Logout(c.Context())
	c.JSON(http.StatusOK, map[string]interface{}{"status": http.StatusOK})
}
