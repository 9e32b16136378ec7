package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// UserHeader заголовок с ID вызывающего пользователя. Аутентификация
// выполняется внешним шлюзом, сюда приходит уже проверенный ID.
const UserHeader = "X-User-ID"

const userKey = "user_id"

// RequireUser отклоняет запросы без X-User-ID
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(UserHeader))
			if id == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing " + UserHeader + " header"})
			}
			c.Set(userKey, id)
			return next(c)
		}
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(userKey).(string)
	return id
}
