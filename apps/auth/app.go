package auth

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
)

type App struct{}

var _ application.Application = (*App)(nil)

func (a App) Register() error {
	db.UseModel(User{})
	db.UseModel(UserLoginHistory{})

	InitializeJWTSecret()
	evo.SetUserInterface(&User{})
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Post("/api/auth/login", controller.Login)
	evo.Post("/api/auth/refresh", controller.Refresh)

	evo.Get("/api/auth/oauth/providers", controller.OAuthProviders)
	evo.Get("/api/auth/oauth/:provider/login", controller.OAuthLogin)
	evo.Get("/api/auth/oauth/:provider/callback", controller.OAuthCallback)

	evo.Get("/api/auth/profile", controller.GetProfile)
	evo.Put("/api/auth/profile", controller.EditProfile)
	evo.Post("/api/auth/api-key", controller.GenerateAPIKey)
	evo.Delete("/api/auth/api-key", controller.RevokeAPIKey)

	// User management, administrators only
	evo.Use("/api/auth/users", RequireAdmin)
	evo.Get("/api/auth/users", controller.ListUsers)
	evo.Post("/api/auth/users", controller.CreateUser)
	evo.Put("/api/auth/users/:id", controller.UpdateUser)
	evo.Delete("/api/auth/users/:id", controller.DeleteUser)
	evo.Post("/api/auth/users/:id/block", controller.BlockUser)
	evo.Post("/api/auth/users/:id/unblock", controller.UnblockUser)
	evo.Get("/api/auth/users/:id/login-history", controller.LoginHistory)

	return nil
}

func (a App) WhenReady() error {
	if args.Exists("--create-admin") {
		CreateAdminUser()
	}
	return nil
}

func (a App) Name() string {
	return "auth"
}
