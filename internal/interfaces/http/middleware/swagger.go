package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gestion-compras/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig holds configuration for Swagger endpoint protection
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // IPs or CIDRs, empty allows everyone
}

// SwaggerProtection answers 404 when the docs are disabled and 403 to
// clients outside the allowed IPs
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	var allowedNets []*net.IPNet
	var allowedIPs []net.IP
	for _, ipStr := range cfg.AllowedIPs {
		if strings.Contains(ipStr, "/") {
			if _, network, err := net.ParseCIDR(ipStr); err == nil {
				allowedNets = append(allowedNets, network)
			}
			continue
		}
		if ip := net.ParseIP(ipStr); ip != nil {
			allowedIPs = append(allowedIPs, ip)
		}
	}
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRouteMissing, "Ruta no encontrada", GetRequestID(c)))
			return
		}
		if restricted && !isIPAllowed(net.ParseIP(c.ClientIP()), allowedIPs, allowedNets) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Acceso a la documentación restringido",
			})
			return
		}
		c.Next()
	}
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowedIP := range allowedIPs {
		if allowedIP.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
