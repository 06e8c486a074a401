//go:build e2e

// Package e2e runs the Gherkin features in features/ against an in-process
// agrocert instance on in-memory stores.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"agrocert/internal/app"
	jwttoken "agrocert/internal/jwt_token"
	"agrocert/internal/platform/config"
	"agrocert/internal/platform/logger"
)

const (
	signingKey = "e2e-signing-key"
	issuer     = "agrocert-e2e"
	audience   = "agrocert"
)

// TestContext carries state between the steps of one scenario.
type TestContext struct {
	app    *app.App
	server *httptest.Server
	jwt    *jwttoken.JWTService

	token      string
	lastStatus int
	lastBody   map[string]any

	gestionID string
	fichaID   string
	ncID      string
}

func (tc *TestContext) start() error {
	cfg := config.Server{
		JWT:              config.JWTConfig{SigningKey: signingKey, Issuer: issuer, Audience: audience},
		PrincipalCultivo: "mani",
		RequestTimeout:   5 * time.Second,
	}
	a, err := app.New(context.Background(), cfg, logger.Discard(), prometheus.NewRegistry())
	if err != nil {
		return err
	}
	tc.app = a
	tc.server = httptest.NewServer(a.Router)
	tc.jwt = jwttoken.NewJWTService(signingKey, issuer, audience)
	return nil
}

func (tc *TestContext) stop() {
	if tc.server != nil {
		tc.server.Close()
	}
	if tc.app != nil {
		tc.app.Close()
	}
}

func (tc *TestContext) authenticate(role string, comunidades ...uuid.UUID) error {
	token, err := tc.jwt.GenerateAccessToken(jwttoken.TokenInput{
		UserID:      uuid.New(),
		Role:        role,
		Comunidades: comunidades,
	}, time.Hour)
	if err != nil {
		return err
	}
	tc.token = token
	return nil
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.server.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp, err := tc.server.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tc.lastBody); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (tc *TestContext) field(name string) string {
	v, ok := tc.lastBody[name]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
