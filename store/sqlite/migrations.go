package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the WAMI store (SQLite).
var Migrations = migrate.NewGroup("wami")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tenants",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_tenants (
    id                      TEXT PRIMARY KEY,
    name                    TEXT NOT NULL,
    parent_id               TEXT REFERENCES wami_tenants(id) ON DELETE CASCADE,
    quotas                  TEXT NOT NULL DEFAULT '{}',
    quota_mode              TEXT NOT NULL DEFAULT 'inherited',
    max_child_depth         INTEGER NOT NULL DEFAULT 0,
    can_create_sub_tenants  INTEGER NOT NULL DEFAULT 0,
    admin_principals        TEXT NOT NULL DEFAULT '[]',
    status                  TEXT NOT NULL DEFAULT 'active',
    metadata                TEXT NOT NULL DEFAULT '{}',
    created_at              TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at              TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_wami_tenants_parent ON wami_tenants (parent_id);
CREATE INDEX IF NOT EXISTS idx_wami_tenants_status ON wami_tenants (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_tenants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_users",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_users (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    name            TEXT NOT NULL,
    path            TEXT NOT NULL DEFAULT '/',
    arn             TEXT NOT NULL,
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, name)
);

CREATE INDEX IF NOT EXISTS idx_wami_users_tenant ON wami_users (tenant_id);
CREATE INDEX IF NOT EXISTS idx_wami_users_path ON wami_users (tenant_id, path);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_users`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_access_keys",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_access_keys (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    secret          TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'Active',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    last_used       TEXT
);

CREATE INDEX IF NOT EXISTS idx_wami_access_keys_user ON wami_access_keys (tenant_id, user_name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_access_keys`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_policies",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_policies (
    id                  TEXT PRIMARY KEY,
    tenant_id           TEXT NOT NULL,
    name                TEXT NOT NULL,
    path                TEXT NOT NULL DEFAULT '/',
    arn                 TEXT NOT NULL UNIQUE,
    description         TEXT NOT NULL DEFAULT '',
    document            TEXT NOT NULL,
    is_attachable       INTEGER NOT NULL DEFAULT 1,
    attachment_count    INTEGER NOT NULL DEFAULT 0,
    metadata            TEXT NOT NULL DEFAULT '{}',
    created_at          TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at          TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE(tenant_id, name)
);

CREATE INDEX IF NOT EXISTS idx_wami_policies_tenant ON wami_policies (tenant_id);
CREATE INDEX IF NOT EXISTS idx_wami_policies_path ON wami_policies (tenant_id, path);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_policy_attachments",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_policy_attachments (
    tenant_id       TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    policy_arn      TEXT NOT NULL,
    attached_at     TEXT NOT NULL DEFAULT (datetime('now')),

    PRIMARY KEY (tenant_id, user_name, policy_arn)
);

CREATE INDEX IF NOT EXISTS idx_wami_attachments_user ON wami_policy_attachments (tenant_id, user_name, attached_at);
CREATE INDEX IF NOT EXISTS idx_wami_attachments_policy ON wami_policy_attachments (policy_arn);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_policy_attachments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_inline_policies",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_inline_policies (
    tenant_id       TEXT NOT NULL,
    user_name       TEXT NOT NULL,
    policy_name     TEXT NOT NULL,
    document        TEXT NOT NULL,
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now')),

    PRIMARY KEY (tenant_id, user_name, policy_name)
);

CREATE INDEX IF NOT EXISTS idx_wami_inline_user ON wami_inline_policies (tenant_id, user_name, created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_inline_policies`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_decision_logs",
			Version: "20240101000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wami_decision_logs (
    id              TEXT PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    caller          TEXT NOT NULL,
    action          TEXT NOT NULL,
    resource        TEXT NOT NULL,
    decision        TEXT NOT NULL,
    reason          TEXT NOT NULL DEFAULT '',
    eval_time_ns    INTEGER NOT NULL DEFAULT 0,
    request_ip      TEXT NOT NULL DEFAULT '',
    metadata        TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_wami_decision_logs_tenant ON wami_decision_logs (tenant_id, created_at);
CREATE INDEX IF NOT EXISTS idx_wami_decision_logs_caller ON wami_decision_logs (tenant_id, caller);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wami_decision_logs`)
				return err
			},
		},
	)
}
