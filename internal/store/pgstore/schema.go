package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL creates the lodging tables. The exclusion constraints reject overlapping
// holding reservations and overlapping active blackouts on the same resource and cycle,
// so a check-then-write race lost by the service surfaces as SQLSTATE 23P01.
const schemaSQL = `
create extension if not exists btree_gist;

create table if not exists resources (
	resource_id text primary key,
	code        varchar(64) not null,
	capacity    integer not null check (capacity >= 1),
	status      varchar(16) not null check (status in ('active', 'maintenance', 'inactive')),
	accessible  boolean not null default false,
	notes       text not null default '',
	created_at  timestamptz not null default now(),
	updated_at  timestamptz not null default now()
);
create unique index if not exists uniq_resources_code on resources (lower(code));

create table if not exists ledger_entries (
	entry_id       text primary key,
	cycle_id       text not null,
	category       varchar(32) not null,
	account_ref    varchar(120) not null,
	entry_date     date not null,
	description    varchar(255) not null,
	amount_cents   bigint not null,
	payment_method varchar(16) not null,
	metadata       jsonb not null default '{}'::jsonb,
	created_by     text,
	created_at     timestamptz not null default now()
);
create index if not exists idx_ledger_entries_cycle on ledger_entries (cycle_id);

create table if not exists blackouts (
	blackout_id text primary key,
	cycle_id    text not null,
	resource_id text not null references resources (resource_id),
	kind        varchar(16) not null check (kind in ('blockage', 'maintenance')),
	title       varchar(120) not null,
	start_date  date not null,
	end_date    date not null,
	description text not null default '',
	active      boolean not null,
	created_by  text,
	created_at  timestamptz not null,
	updated_by  text,
	updated_at  timestamptz not null,
	check (start_date < end_date),
	constraint blackouts_no_overlap exclude using gist (
		cycle_id with =,
		resource_id with =,
		daterange(start_date, end_date, '[)') with &&
	) where (active)
);

create table if not exists reservations (
	reservation_id       text primary key,
	cycle_id             text not null,
	resource_id          text not null references resources (resource_id),
	responsible_name     varchar(200) not null,
	adults               integer not null,
	children             integer not null,
	child_ages           varchar(120) not null default '',
	special_needs        boolean not null default false,
	special_needs_detail text not null default '',
	entry_date           date not null,
	exit_date            date not null,
	status               varchar(16) not null check (status in ('tentative', 'confirmed', 'cancelled')),
	amount_cents         bigint not null default 0,
	paid                 boolean not null default false,
	payment_method       varchar(16) not null default '',
	account_ref          varchar(120) not null default '',
	ledger_entry_id      text unique references ledger_entries (entry_id),
	notes                text not null default '',
	created_by           text,
	created_at           timestamptz not null,
	updated_by           text,
	updated_at           timestamptz not null,
	check (entry_date < exit_date),
	constraint reservations_no_overlap exclude using gist (
		cycle_id with =,
		resource_id with =,
		daterange(entry_date, exit_date, '[)') with &&
	) where (status in ('tentative', 'confirmed'))
);
create index if not exists idx_reservations_cycle_created on reservations (cycle_id, created_at desc);

create table if not exists cycles (
	cycle_id   text primary key,
	name       varchar(200) not null,
	starts_at  timestamptz not null,
	created_at timestamptz not null default now()
);

create table if not exists reminders (
	reminder_id text primary key,
	cycle_id    text not null references cycles (cycle_id),
	send_at     timestamptz not null,
	phone       varchar(32) not null,
	message     text not null default '',
	media_url   varchar(500) not null default '',
	active      boolean not null,
	sent        boolean not null default false,
	sent_at     timestamptz,
	created_at  timestamptz not null default now()
);
create index if not exists idx_reminders_due on reminders (active, sent, send_at);
`

// Migrate applies the lodging schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return wrapStoreError(errorSubjectSchema, errorCodeMigrate, err)
	}
	return nil
}
