// Package app assembles stores, services and HTTP modules from configuration.
// cmd/server runs the result; the e2e suite serves it in-process.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"agrocert/internal/audit"
	fichahandler "agrocert/internal/ficha/handler"
	fichametrics "agrocert/internal/ficha/metrics"
	fichaservice "agrocert/internal/ficha/service"
	followuphandler "agrocert/internal/followup/handler"
	followupmetrics "agrocert/internal/followup/metrics"
	followupservice "agrocert/internal/followup/service"
	gestionhandler "agrocert/internal/gestion/handler"
	gestionmetrics "agrocert/internal/gestion/metrics"
	gestionservice "agrocert/internal/gestion/service"
	httpapi "agrocert/internal/http"
	jwttoken "agrocert/internal/jwt_token"
	"agrocert/internal/platform/config"
	"agrocert/internal/platform/metrics"
	"agrocert/internal/platform/redis"
	referencehandler "agrocert/internal/reference/handler"
	referenceservice "agrocert/internal/reference/service"
	referencestore "agrocert/internal/reference/store"
	"agrocert/internal/report"
	reporthandler "agrocert/internal/report/handler"
	usuariohandler "agrocert/internal/usuario/handler"
	usuarioservice "agrocert/internal/usuario/service"
	"agrocert/pkg/platform/circuit"
)

// App is a wired agrocert instance.
type App struct {
	Router http.Handler
	// Demo is set when the app runs on in-memory stores.
	Demo *referencestore.Demo

	closers []func()
}

// New connects every configured backend and builds the router. Optional
// backends (Redis, Kafka, MinIO, Postgres) are skipped when unconfigured.
func New(ctx context.Context, cfg config.Server, log *slog.Logger, reg *prometheus.Registry) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	stores, err := openBackends(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.Demo = stores.demo
	a.closers = append(a.closers, func() { _ = stores.Close() })

	files, err := openFileStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	checks := map[string]httpapi.HealthCheck{}
	if stores.db != nil {
		checks["postgres"] = stores.db.PingContext
	}

	sinks := []audit.Sink{audit.NewLogSink(log)}
	if stores.db != nil {
		sinks = append(sinks, audit.NewPostgresSink(stores.db))
	}
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		sinks = append(sinks, guarded(audit.NewRedisStreamSink(redisClient.Client, redisClient.Stream), "redis", log))
		checks["redis"] = redisClient.Health
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kafka.Close)
		if err := kafka.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("audit topic bootstrap failed", "error", err)
		}
		sinks = append(sinks, guarded(kafka, "kafka", log))
	}
	publisher := audit.NewPublisher(log, sinks...)

	gestiones := gestionservice.New(stores.gestiones, stores.runner,
		gestionservice.WithLogger(log),
		gestionservice.WithAuditPublisher(publisher),
		gestionservice.WithMetrics(gestionmetrics.New(reg)),
	)
	references := referenceservice.New(stores.references, cfg.PrincipalCultivo)
	fichas := fichaservice.New(stores.fichas, stores.runner, gestiones, references,
		fichaservice.WithLogger(log),
		fichaservice.WithAuditPublisher(publisher),
		fichaservice.WithMetrics(fichametrics.New(reg)),
		fichaservice.WithFileStorage(files),
	)
	followups := followupservice.New(stores.followups, stores.runner, fichas,
		followupservice.WithLogger(log),
		followupservice.WithAuditPublisher(publisher),
		followupservice.WithMetrics(followupmetrics.New(reg)),
		followupservice.WithFileStorage(files),
	)
	usuarios := usuarioservice.New(stores.usuarios, stores.runner,
		usuarioservice.WithLogger(log),
		usuarioservice.WithAuditPublisher(publisher),
	)
	reports := report.New(fichas, log)

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	a.Router = httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Validator:      jwttoken.NewIdentityValidator(jwtService),
		RequestTimeout: cfg.RequestTimeout,
		HealthChecks:   checks,
		Modules: []httpapi.Module{
			gestionhandler.New(gestiones, log),
			referencehandler.New(references, log),
			fichahandler.New(fichas, log),
			followuphandler.New(followups, fichas, log),
			usuariohandler.New(usuarios, log),
			reporthandler.New(reports, log),
		},
	})
	return a, nil
}

// Close releases backends in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// guarded wraps a remote audit sink so an outage stops costing a network
// round trip per event.
func guarded(sink audit.Sink, name string, log *slog.Logger) audit.Sink {
	return audit.NewBreakerSink(sink, circuit.New("audit_"+name,
		circuit.WithFailureThreshold(5),
		circuit.WithCooldown(30*time.Second),
	), log)
}
