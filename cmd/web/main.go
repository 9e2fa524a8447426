// cmd/web/main.go
//
// LMS platform – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config, resolve the control-plane DB password through Vault,
//     and open the shared pool.
//
//  4. Build the edge: organization store → hostname resolver → gateway.
//
//  5. Mount downstream handlers behind the gateway middleware.  Course,
//     group, user, and analytics CRUD live in their own services; the
//     stubs here only demonstrate the forwarded slug + verdict contract.
//
//  6. Chain: ForceHTTPS → security headers → request-info enrichment →
//     gateway → router.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sailybaev/ai-lms-sub000/internal/acl"
	"github.com/sailybaev/ai-lms-sub000/internal/config"
	"github.com/sailybaev/ai-lms-sub000/internal/database"
	"github.com/sailybaev/ai-lms-sub000/internal/gateway"
	"github.com/sailybaev/ai-lms-sub000/internal/logger"
	"github.com/sailybaev/ai-lms-sub000/internal/middleware"
	"github.com/sailybaev/ai-lms-sub000/internal/requestinfo"
	"github.com/sailybaev/ai-lms-sub000/internal/server"
	"github.com/sailybaev/ai-lms-sub000/internal/session"
	"github.com/sailybaev/ai-lms-sub000/internal/tenant"
	"github.com/sailybaev/ai-lms-sub000/internal/vault"
)

const serverEnvPath = "/usr/local/etc/ai-lms/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config + secrets ────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	password := cfg.Database.GlobalPassword
	if vault.IsURI(password) {
		vcli, err := vault.New(ctx, logOut.Infof)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		password, err = vcli.Resolve(ctx, password)
		if err != nil {
			logOut.Fatalf("resolve db password: %v", err)
		}
	}

	//
	// ── 2.  Control-plane DB ────────────────────────────────────────────
	//
	dsn := fmt.Sprintf(cfg.Database.GlobalDSN, password)
	logOut.Infow("connecting to control-plane DB")
	bootCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	globalDB, err := database.OpenWithOptions(bootCtx, dsn, database.Options{
		Retries:      2,
		RetryBackoff: 500 * time.Millisecond,
	})
	cancel()
	if err != nil {
		logOut.Fatalf("connect control-plane DB: %v", err)
	}
	defer globalDB.Close()

	// Log active-organization count as an early sanity check.
	if orgs, err := tenant.AllActive(globalDB); err == nil {
		logOut.Infow("control-plane DB online", "active_orgs", len(orgs))
	}

	//
	// ── 3.  Optional geolocation ────────────────────────────────────────
	//
	if cfg.Gateway.GeoDBPath != "" {
		if err := requestinfo.InitGeo(cfg.Gateway.GeoDBPath); err != nil {
			logOut.Warnw("geo database unavailable", "path", cfg.Gateway.GeoDBPath, "err", err)
		}
	}

	//
	// ── 4.  Edge: store → resolver → gateway ───────────────────────────
	//
	store := tenant.NewStore(globalDB)
	resolver := tenant.NewResolver(store, cfg.Gateway.LocalHosts)
	edge := gateway.New(resolver)

	//
	// ── 5.  Downstream router (runs after the gateway verdict) ─────────
	//
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	r.Get("/login", platformLogin)
	r.Get("/superadmin", superAdminHome(store.DB()))
	r.Get("/superadmin/orgs", superAdminOrgs(store.DB()))

	r.Route("/{org}", func(r chi.Router) {
		r.Get("/login", orgLogin)
		r.Post("/login", orgLoginSubmit)
		r.Get("/logout", orgLogout)

		r.Get("/admin", orgArea(store.DB(), acl.RoleAdmin))
		r.Get("/admin/*", orgArea(store.DB(), acl.RoleAdmin))
		r.Get("/teacher", orgArea(store.DB(), acl.RoleAdmin, acl.RoleTeacher))
		r.Get("/teacher/*", orgArea(store.DB(), acl.RoleAdmin, acl.RoleTeacher))
		r.Get("/student", orgArea(store.DB(), acl.RoleAdmin, acl.RoleTeacher, acl.RoleStudent))
		r.Get("/student/*", orgArea(store.DB(), acl.RoleAdmin, acl.RoleTeacher, acl.RoleStudent))
	})

	//
	// ── 6.  Chain and serve ─────────────────────────────────────────────
	//
	var handler http.Handler = edge.Middleware(r)
	handler = requestinfo.Enrich(handler)
	handler = middleware.Security(handler)
	if cfg.HTTP.ForceHTTPS {
		handler = middleware.ForceHTTPS(store, handler)
	}

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	logOut.Infow("gateway online", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logOut.Fatalf("serve: %v", err)
	}
}

/*──────────────────────── downstream handler stubs ─────────────────────────*/

// platformLogin is the platform-wide login page.  Credential handling is a
// collaborator concern; the stub exists so platform redirects have a
// destination.
func platformLogin(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "platform sign-in (callbackUrl=%s)\n", r.URL.Query().Get("callbackUrl"))
}

// orgLogin is the per-organization login page.  The edge passes it through
// unconditionally, so it must never redirect.
func orgLogin(w http.ResponseWriter, r *http.Request) {
	org := chi.URLParam(r, "org")
	fmt.Fprintf(w, "%s sign-in (callbackUrl=%s)\n", org, r.URL.Query().Get("callbackUrl"))
}

// orgLoginSubmit finishes a sign-in.  The credential collaborator verifies
// the password and mints the session row; this stub owns only the cookie
// hand-off and the landing redirect.
func orgLoginSubmit(w http.ResponseWriter, r *http.Request) {
	token := r.PostFormValue("token")
	if token == "" {
		http.Error(w, "missing session token", http.StatusUnprocessableEntity)
		return
	}
	session.LoginUser(w, r, token)

	target := r.URL.Query().Get("callbackUrl")
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		target = "/" + chi.URLParam(r, "org") + "/"
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func orgLogout(w http.ResponseWriter, r *http.Request) {
	session.LogoutUser(w, r)
	http.Redirect(w, r, "/"+chi.URLParam(r, "org")+"/login", http.StatusTemporaryRedirect)
}

// orgArea gates a role-scoped area and forwards the verdict downstream.
func orgArea(db *sqlx.DB, allowed ...acl.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org := chi.URLParam(r, "org")
		grant, redirect := acl.RequireOrgRole(r.Context(), db, r, org, allowed...)
		if redirect != "" {
			http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
			return
		}
		fmt.Fprintf(w, "%s: %s area, signed in as %s\n", org, grant.Role, grant.Email)
	}
}

// superAdminHome gates the platform operator area.
func superAdminHome(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, redirect := acl.RequireSuperAdmin(r.Context(), db, r)
		if redirect != "" {
			http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
			return
		}
		fmt.Fprintf(w, "superadmin console, signed in as %s\n", email)
	}
}

// superAdminOrgs lists live organizations for the operator dashboard.
func superAdminOrgs(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, redirect := acl.RequireSuperAdmin(r.Context(), db, r)
		if redirect != "" {
			http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
			return
		}
		orgs, err := tenant.AllActive(db)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		for _, o := range orgs {
			fmt.Fprintf(w, "%s\t%s\n", o.Slug, o.Name)
		}
	}
}
