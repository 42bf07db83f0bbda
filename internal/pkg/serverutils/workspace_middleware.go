package serverutils

import (
	"github.com/Gatu-1548/plagio-ia/internal/workspace"
	"github.com/gofiber/fiber/v2"
)

const (
	TabHeader    = "X-Console-Session"
	workspaceKey = "workspace"
)

// WorkspaceMiddleware resolves the tab's workspace from the session header
// (or the "tab" query parameter, for websocket upgrades).
func WorkspaceMiddleware(registry *workspace.Registry) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tabID := ctx.Get(TabHeader)
		if tabID == "" {
			tabID = ctx.Query("tab")
		}
		if tabID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing "+TabHeader+" header")
		}

		ws, err := registry.Get(ctx.UserContext(), tabID)
		if err != nil {
			return err
		}
		ctx.Locals(workspaceKey, ws)
		return ctx.Next()
	}
}

// RequireSession rejects requests from tabs without a token.
func RequireSession(ctx *fiber.Ctx) error {
	ws := Workspace(ctx)
	if ws == nil || !ws.Session.Current().Authenticated() {
		return workspace.ErrSignedOut
	}
	return ctx.Next()
}

func Workspace(ctx *fiber.Ctx) *workspace.Workspace {
	ws, _ := ctx.Locals(workspaceKey).(*workspace.Workspace)
	return ws
}
