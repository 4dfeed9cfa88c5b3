// Package middleware provides HTTP middleware functions for authentication and authorization.
// These middleware functions are used to protect routes and enforce role-based access control.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/mr-alpha10/sail-gate-pass/internal/models"
)

// AuthRequired is a middleware that ensures the user is authenticated.
// It checks for a valid session and user_id, redirecting to login if not found.
//
// This middleware should be applied to all protected routes that require authentication.
// It sets user information in the context (c.Locals) for use by handlers.
//
// Parameters:
//   - store: Session store for managing user sessions
//
// Returns:
//   - fiber.Handler: Middleware function that can be used with app.Use() or route groups
//
// Context Locals Set:
//   - user_id: The authenticated user's ID (string, UUID)
//   - user_role: The user's role ("visitor", "security" or "department_agent")
//   - user_name: The user's display name (string)
//   - user_email: The user's email address (string)
//   - user_department: The department agent's department, empty for other roles
//
// Example:
//
//	visitor := app.Group("/visitor", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Retrieve session from store
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/login")
		}

		// Check if user_id exists in session
		userID := sess.Get("user_id")
		if userID == nil {
			return c.Redirect("/login")
		}

		// Pass user information to context for handlers to use
		// These locals are available in all downstream handlers
		c.Locals("user_id", userID)
		c.Locals("user_role", sess.Get("user_role"))
		c.Locals("user_name", sess.Get("user_name"))
		c.Locals("user_email", sess.Get("user_email"))
		c.Locals("user_department", sess.Get("user_department"))

		// Continue to next handler
		return c.Next()
	}
}

// RoleRequired returns a middleware that ensures the user holds the given
// role. It MUST be used after AuthRequired middleware, as it depends on
// user_role being set in the context.
//
// It returns a 403 Forbidden error if the user holds a different role.
//
// Example:
//
//	security := app.Group("/security",
//	    middleware.AuthRequired(store),
//	    middleware.RoleRequired(models.RoleSecurity))
//
// Security Note:
//
//	Always chain this after AuthRequired to ensure user is authenticated
//	before checking role.
func RoleRequired(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get user role from context (set by AuthRequired)
		if c.Locals("user_role") != role {
			return c.Status(fiber.StatusForbidden).SendString("Access denied")
		}
		return c.Next()
	}
}

// VisitorOnly restricts a route group to visitor accounts.
func VisitorOnly() fiber.Handler {
	return RoleRequired(models.RoleVisitor)
}

// SecurityOnly restricts a route group to security officer accounts.
func SecurityOnly() fiber.Handler {
	return RoleRequired(models.RoleSecurity)
}

// DepartmentOnly restricts a route group to department agent accounts.
func DepartmentOnly() fiber.Handler {
	return RoleRequired(models.RoleDepartmentAgent)
}

// CurrentUser reconstructs the authenticated user from context locals set by
// AuthRequired. Handlers use this to pass an explicit actor into the service
// layer instead of reading locals piecemeal.
func CurrentUser(c *fiber.Ctx) *models.User {
	user := &models.User{}
	if v, ok := c.Locals("user_id").(string); ok {
		user.ID = v
	}
	if v, ok := c.Locals("user_role").(string); ok {
		user.Role = v
	}
	if v, ok := c.Locals("user_name").(string); ok {
		user.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		user.Email = v
	}
	if v, ok := c.Locals("user_department").(string); ok {
		user.Department = v
	}
	return user
}
