package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLocker sérialise le traitement des webhooks par commande via
// SET NX + TTL. Le TTL borne le pire cas (processus tué verrou en
// main) ; la libération normale passe par le release retourné.
type RedisLocker struct {
	Client     *redis.Client
	TTL        time.Duration
	RetryDelay time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		Client:     client,
		TTL:        30 * time.Second,
		RetryDelay: 50 * time.Millisecond,
	}
}

// releaseScript ne supprime la clé que si elle porte encore notre
// jeton : un verrou expiré puis repris par un autre traitement ne
// doit pas être libéré par l'ancien détenteur.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock bloque jusqu'à obtention du verrou de la commande ou expiration
// du contexte.
func (l *RedisLocker) Lock(ctx context.Context, orderID int64) (func(), error) {
	key := fmt.Sprintf("order:lock:%d", orderID)
	token := uuid.NewString()

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("verrou commande %d: %w", orderID, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("verrou commande %d: %w", orderID, ctx.Err())
		case <-time.After(l.RetryDelay):
		}
	}

	release := func() {
		// Libération en arrière-plan : le contexte de la requête peut
		// déjà être annulé au moment du defer.
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(bg, l.Client, []string{key}, token).Err(); err != nil {
			log.Printf("⚠️ Libération verrou %s échouée: %v", key, err)
		}
	}
	return release, nil
}
