package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// PlayerIDKey — ключ идентичности игрока в контексте Gin
	PlayerIDKey = "playerID"

	playerCookieName   = "geoquiz_player"
	playerCookieMaxAge = 365 * 24 * 60 * 60 // год
)

// PlayerIdentity выдаёт каждому игроку стабильную анонимную идентичность
// через cookie. Идентичность используется как пространство имён для
// сессий, перемешивания ответов и статистики; авторизации здесь нет.
func PlayerIdentity(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, err := c.Cookie(playerCookieName)
		if err != nil || !validPlayerID(playerID) {
			playerID = "anon:" + uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(playerCookieName, playerID, playerCookieMaxAge, "/", "", secureCookie, true)
		}
		c.Set(PlayerIDKey, playerID)
		c.Next()
	}
}

// PlayerID возвращает идентичность игрока из контекста запроса
func PlayerID(c *gin.Context) string {
	if id, ok := c.Get(PlayerIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// validPlayerID проверяет формат cookie: "anon:" + UUID
func validPlayerID(id string) bool {
	const prefix = "anon:"
	if len(id) <= len(prefix) || id[:len(prefix)] != prefix {
		return false
	}
	_, err := uuid.Parse(id[len(prefix):])
	return err == nil
}
