package sqlite

var tables = map[string]string{
	"machine": `CREATE TABLE IF NOT EXISTS machine(
id INTEGER PRIMARY KEY AUTOINCREMENT,
uuid TEXT NOT NULL UNIQUE,
mac_address TEXT NOT NULL UNIQUE,
via TEXT NOT NULL,
first_seen DATETIME NOT NULL,
last_seen DATETIME NOT NULL
)`,
	"boot_event": `CREATE TABLE IF NOT EXISTS boot_event(
id INTEGER PRIMARY KEY AUTOINCREMENT,
mac_address TEXT NOT NULL,
target TEXT NOT NULL,
kind TEXT NOT NULL,
created_at DATETIME NOT NULL
)`,
}
