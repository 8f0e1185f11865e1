package middleware

import (
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// PayfastIPAllowlist rejette les notifications ITN dont l'IP source
// n'appartient pas aux hôtes du fournisseur. Les résolutions DNS sont
// mises en cache : Payfast notifie en rafale après chaque paiement.
func PayfastIPAllowlist(validHosts []string) gin.HandlerFunc {
	cache := &hostIPCache{ttl: 10 * time.Minute}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		allowed := cache.resolve(validHosts)

		for _, candidate := range allowed {
			if candidate == ip {
				c.Next()
				return
			}
		}

		log.Printf("🚨 Notification Payfast refusée : IP %s hors liste", ip)
		c.JSON(http.StatusForbidden, gin.H{"error": "Source non autorisée"})
		c.Abort()
	}
}

type hostIPCache struct {
	mu        sync.Mutex
	ips       []string
	expiresAt time.Time
	ttl       time.Duration
}

func (h *hostIPCache) resolve(hosts []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if time.Now().Before(h.expiresAt) {
		return h.ips
	}

	var ips []string
	for _, host := range hosts {
		addrs, err := net.LookupIP(host)
		if err != nil {
			log.Printf("⚠️ Résolution %s échouée: %v", host, err)
			continue
		}
		for _, addr := range addrs {
			ips = append(ips, addr.String())
		}
	}

	// Une résolution entièrement vide garde l'ancien cache plutôt que
	// de bloquer toutes les notifications.
	if len(ips) > 0 {
		h.ips = ips
		h.expiresAt = time.Now().Add(h.ttl)
	}
	return h.ips
}
