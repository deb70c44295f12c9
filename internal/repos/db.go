package repos

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (categories/sellers/vehicles/parts)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Users & tokens
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('BUYER','SELLER','ADMIN')),
  email_verified INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS auth_tokens(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  token_hash TEXT NOT NULL UNIQUE,
  expires_at DATETIME NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_auth_tokens_user ON auth_tokens(user_id);

-- Sellers (scrap yards); business_hours is a JSON document
CREATE TABLE IF NOT EXISTS sellers(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  business_name TEXT NOT NULL,
  phone TEXT,
  address TEXT,
  business_hours TEXT,
  is_verified INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Vehicles
CREATE TABLE IF NOT EXISTS vehicles(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES sellers(id) ON DELETE CASCADE,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  vin TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_vehicles_seller ON vehicles(seller_id);

-- Parts; images is a JSON array of paths
CREATE TABLE IF NOT EXISTS parts(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES sellers(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  vehicle_id TEXT NOT NULL REFERENCES vehicles(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  part_number TEXT,
  price REAL NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL CHECK (status IN ('AVAILABLE','RESERVED','SOLD','LISTED')),
  condition TEXT NOT NULL CHECK (condition IN ('NEW','EXCELLENT','GOOD','FAIR','POOR')),
  is_listed_on_marketplace INTEGER NOT NULL DEFAULT 0,
  images TEXT,
  created_at DATETIME NOT NULL,
  updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parts_category   ON parts(category_id);
CREATE INDEX IF NOT EXISTS idx_parts_vehicle    ON parts(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_parts_created_at ON parts(created_at);

-- Analytics & activity; metadata is a JSON document
CREATE TABLE IF NOT EXISTS analytics_events(
  id TEXT PRIMARY KEY,
  seller_id TEXT REFERENCES sellers(id) ON DELETE SET NULL,
  event_type TEXT NOT NULL,
  metadata TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS activity_logs(
  id TEXT PRIMARY KEY,
  user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
  action TEXT NOT NULL,
  metadata TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/sellers/vehicles/parts")

	// Seeded parts need a seller, and sellers need a user.
	if err := seedUsers(db); err != nil {
		return err
	}

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('engine','Engine & Drivetrain'),
	  ('body','Body Panels'),
	  ('lighting','Lighting'),
	  ('electrical','Electrical')`)

	tx.MustExec(`INSERT INTO sellers(id,user_id,business_name,phone,address,business_hours,is_verified) VALUES
	  ('s-northyard','u-north','North Yard Salvage','+1-301-555-0100','12 Foundry Rd, College Park MD',
	   '{"mon-fri":"08:00-17:00","sat":"09:00-13:00","sun":"closed"}',1)`)

	tx.MustExec(`INSERT INTO vehicles(id,seller_id,make,model,year,vin) VALUES
	  ('v-civic-2004','s-northyard','Honda','Civic',2004,'2HGES16504H500001'),
	  ('v-f150-2011','s-northyard','Ford','F-150',2011,NULL)`)

	now := time.Now().UTC()
	parts := []struct {
		id, cat, veh, name, desc string
		pn                       any
		price                    float64
		status, cond             string
		listed                   bool
		images                   string
	}{
		{"p-alt-civic", "engine", "v-civic-2004", "Alternator", "Denso 80A, bench tested", "31100-PLM-A01", 85, "AVAILABLE", "GOOD", true, `["parts/p-alt-civic/main.jpg"]`},
		{"p-hl-civic", "lighting", "v-civic-2004", "Headlight Assembly (Left)", "Clear lens, no cracks", "33151-S5A-A01", 60, "AVAILABLE", "EXCELLENT", true, `["parts/p-hl-civic/main.jpg"]`},
		{"p-door-civic", "body", "v-civic-2004", "Front Door (Right)", "Silver, minor scratches", nil, 140, "RESERVED", "FAIR", false, `[]`},
		{"p-starter-f150", "electrical", "v-f150-2011", "Starter Motor", "OEM Motorcraft", "BL3T-11000-AA", 120, "AVAILABLE", "GOOD", false, `["parts/p-starter-f150/main.jpg"]`},
		{"p-tail-f150", "lighting", "v-f150-2011", "Tail Light (Left)", "Cracked housing", nil, 35, "SOLD", "POOR", true, `[]`},
		{"p-engine-f150", "engine", "v-f150-2011", "5.0L V8 Engine", "112k miles, runs", "BR3Z-6006-A", 2400, "LISTED", "GOOD", true, `["parts/p-engine-f150/main.jpg","parts/p-engine-f150/side.jpg"]`},
	}
	for i, p := range parts {
		created := now.Add(time.Duration(i-len(parts)) * time.Hour)
		tx.MustExec(`INSERT INTO parts(id,seller_id,category_id,vehicle_id,name,description,part_number,price,currency,
		  status,condition,is_listed_on_marketplace,images,created_at,updated_at)
		  VALUES(?,?,?,?,?,?,?,?,'USD',?,?,?,?,?,?)`,
			p.id, "s-northyard", p.cat, p.veh, p.name, p.desc, p.pn, p.price, p.status, p.cond, p.listed, p.images, created, created)
	}

	return tx.Commit()
}

// seedUsers ensures the demo buyer, seller and admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	users := []u{
		mk("u-alice", "alice@partpal.test", "Alice", "BUYER", "Passw0rd!"),
		mk("u-north", "yard@partpal.test", "North Yard", "SELLER", "Passw0rd!"),
		mk("u-admin", "admin@partpal.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,email_verified)
			VALUES(?,?,?,?,?,1)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
