// Package redis limitador de peticiones compartido entre réplicas (token bucket en Lua)
// con respaldo en memoria cuando Redis no está disponible.
package redis

import (
	"context"
	"crypto/tls"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/custodia-api/pkg/config"
	"github.com/jhoicas/custodia-api/pkg/logger"
)

// NewClient crea el cliente y hace ping con timeout corto. Devuelve nil si Redis no está
// configurado o no responde; los llamadores degradan al limitador local.
func NewClient(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *goredis.Client {
	if cfg.Addr == "" {
		return nil
	}
	opts := &goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis no disponible, se usa limitador local")
		_ = client.Close()
		return nil
	}
	return client
}
