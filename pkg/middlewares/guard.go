package middlewares

import (
	"context"

	"github.com/gofiber/fiber/v2"

	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
	t_token "github.com/BigT001/studyexpressuk-sub002/pkg/token"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//HeaderToken token in Authorization header (Bearer scheme)
	HeaderToken = "Authorization"

	//TokenAccountID get account from token, set c.locals name
	TokenAccountID = "AccountID"
	//TokenEmail get email from token, set c.locals name
	TokenEmail = "email"
	//TokenRole get role from token, set c.locals name
	TokenRole = "role"
	//TokenCredential raw credential that passed the guard, set c.locals name.
	//websocket 連線延長 session 時要用原始憑證
	TokenCredential = "credential"
)

// Identity the authenticated caller, as resolved from the credential.
type Identity struct {
	AccountID string
	Email     string
	Role      t_token.RoleType
}

// SessionChecker reports whether the account still holds a live session.
// Logout removes the session before the JWT expires, so a parsed token
// alone is not enough.
type SessionChecker func(ctx context.Context, accountID string) bool

// Resolve validates the credential and the role allow-list. An empty
// allow-list means any authenticated role, never public access. Resolve
// reads only, it never refreshes the session TTL.
func Resolve(ctx context.Context, tokenStr string, alive SessionChecker, allowed []t_token.RoleType) (*Identity, error) {
	if tokenStr == "" {
		return nil, errprocess.New(errprocess.Unauthenticated, "missing token")
	}

	claims, err := t_token.ParseJWTFunc(tokenStr)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Unauthenticated, "invalid token", err)
	}

	if alive != nil && !alive(ctx, claims.AccountID) {
		return nil, errprocess.New(errprocess.Unauthenticated, "session expired")
	}

	identity := &Identity{
		AccountID: claims.AccountID,
		Email:     claims.Email,
		Role:      t_token.RoleType(claims.Role),
	}

	if len(allowed) == 0 {
		allowed = t_token.AllRoles
	}
	for _, role := range allowed {
		if identity.Role == role {
			return identity, nil
		}
	}

	return nil, errprocess.New(errprocess.Forbidden, "role not allowed")
}

// RequireRoles builds the guard middleware for a route. It runs before any
// handler logic and rejects with 401 when the credential is missing or
// dead, 403 when the role is not in the allow-list.
func RequireRoles(alive SessionChecker, roles ...t_token.RoleType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ExtractToken(c)

		identity, err := Resolve(c.UserContext(), tokenStr, alive, roles)
		if err != nil {
			return c.Status(errprocess.HTTPStatus(err)).JSON(fiber.Map{
				"error": rejectMessage(err),
			})
		}

		c.Locals(TokenAccountID, identity.AccountID)
		c.Locals(TokenEmail, identity.Email)
		c.Locals(TokenRole, string(identity.Role))
		c.Locals(TokenCredential, tokenStr)

		return c.Next()
	}
}

// IdentityFromCtx rebuild the Identity a passed guard stored in locals
func IdentityFromCtx(c *fiber.Ctx) Identity {
	id, _ := c.Locals(TokenAccountID).(string)
	email, _ := c.Locals(TokenEmail).(string)
	role, _ := c.Locals(TokenRole).(string)
	return Identity{AccountID: id, Email: email, Role: t_token.RoleType(role)}
}

// ExtractToken credential precedence: query, cookie, Authorization Bearer
func ExtractToken(c *fiber.Ctx) string {
	tokenStr := c.Query(QueryToken)

	// 如果查詢參數中沒有 token，則嘗試從 Cookie 中獲取
	if tokenStr == "" {
		tokenStr = c.Cookies(CookieToken)
	}

	// 最後嘗試 Authorization: Bearer
	if tokenStr == "" {
		auth := c.Get(HeaderToken)
		if len(auth) > 7 && auth[:7] == "Bearer " {
			tokenStr = auth[7:]
		}
	}

	return tokenStr
}

func rejectMessage(err error) string {
	if errprocess.KindOf(err) == errprocess.Forbidden {
		return "Forbidden"
	}
	return "Unauthenticated"
}
