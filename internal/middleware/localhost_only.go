package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LocalhostOnly middleware - only allow localhost or whitelisted IPs access
type LocalhostOnly struct {
	logger     *logrus.Logger
	allowedIPs []string // List of allowed IP addresses or CIDR ranges
}

func NewLocalhostOnly(logger *logrus.Logger, allowedIPs []string) *LocalhostOnly {
	if logger == nil {
		logger = logrus.New()
	}
	return &LocalhostOnly{
		logger:     logger,
		allowedIPs: allowedIPs,
	}
}

// Restrict rejects requests from clients outside localhost and the
// configured allow list.
func (l *LocalhostOnly) Restrict() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if l.isAllowed(clientIP) {
			c.Next()
			return
		}

		l.logger.WithFields(logrus.Fields{
			"client_ip": clientIP,
			"path":      c.Request.URL.Path,
		}).Warn("🚫 Access denied - client outside allow list")

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Access restricted",
		})
		c.Abort()
	}
}

func (l *LocalhostOnly) isAllowed(clientIP string) bool {
	ip := net.ParseIP(clientIP)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}

	for _, allowed := range l.allowedIPs {
		allowed = strings.TrimSpace(allowed)
		if allowed == "" {
			continue
		}
		if strings.Contains(allowed, "/") {
			if _, cidr, err := net.ParseCIDR(allowed); err == nil && cidr.Contains(ip) {
				return true
			}
			continue
		}
		if allowed == clientIP {
			return true
		}
	}
	return false
}
