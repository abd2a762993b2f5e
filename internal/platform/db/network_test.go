package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestExtractNetworkID_FromHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Network-ID", "helplink_west")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nid := extractNetworkID(c, "default")
	if nid != "helplink_west" {
		t.Errorf("expected helplink_west, got %s", nid)
	}
}

func TestExtractNetworkID_FromQuery(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?network_id=helplink_south", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nid := extractNetworkID(c, "default")
	if nid != "helplink_south" {
		t.Errorf("expected helplink_south, got %s", nid)
	}
}

func TestExtractNetworkID_FromJWT(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("jwt_network_id", "jwt_network")

	nid := extractNetworkID(c, "default")
	if nid != "jwt_network" {
		t.Errorf("expected jwt_network, got %s", nid)
	}
}

func TestExtractNetworkID_Default(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	nid := extractNetworkID(c, "default")
	if nid != "default" {
		t.Errorf("expected default, got %s", nid)
	}
}

func TestExtractNetworkID_Priority(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?network_id=query", nil)
	req.Header.Set("X-Network-ID", "header")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("jwt_network_id", "jwt")

	// The JWT claim wins over header and query.
	nid := extractNetworkID(c, "default")
	if nid != "jwt" {
		t.Errorf("expected jwt, got %s", nid)
	}
}

func TestNetworkIDPattern(t *testing.T) {
	valid := []string{"abc", "helplink_1", "network_abc_123", "A1B2"}
	for _, v := range valid {
		if !networkIDPattern.MatchString(v) {
			t.Errorf("expected %s to be valid", v)
		}
	}

	invalid := []string{"a-b", "a.b", "a b", "'; DROP TABLE", "a/b", ""}
	for _, v := range invalid {
		if networkIDPattern.MatchString(v) {
			t.Errorf("expected %s to be invalid", v)
		}
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil conn from empty context")
	}
}

func TestNetworkFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), NetworkIDKey, "test_network")
	if nid := NetworkFromContext(ctx); nid != "test_network" {
		t.Errorf("expected test_network, got %s", nid)
	}
	if empty := NetworkFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string, got %s", empty)
	}
}

func TestCreateNetworkSchema_InvalidID(t *testing.T) {
	if err := CreateNetworkSchema(context.Background(), nil, "invalid-id!", ""); err == nil {
		t.Error("expected error for invalid network ID")
	}
}
