package models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase opens the roster/attendance database and migrates the
// schema. The driver is selected with DB_DRIVER: "mysql" (default) for
// deployments, "sqlite" for local development. Both bindings carry the
// same logical schema, including the attendance uniqueness index.
func ConnectDatabase() {
	// .env is local-dev only, ignore the error
	_ = godotenv.Load()

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "mysql"
	}

	var (
		db  *gorm.DB
		err error
	)
	// TranslateError so a unique-index violation surfaces as
	// gorm.ErrDuplicatedKey on both drivers
	cfg := &gorm.Config{TranslateError: true}
	switch driver {
	case "sqlite":
		path := os.Getenv("DATABASE_PATH")
		if path == "" {
			path = "smart_attendance.db"
		}
		db, err = gorm.Open(sqlite.Open(path), cfg)
	default:
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("FATAL ERROR: DATABASE_URL not set! Check the platform variables.")
		}
		db, err = gorm.Open(mysql.Open(dbURL), cfg)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	if err := SeedAdmin(db); err != nil {
		log.Printf("Warning: could not seed admin profile: %v", err)
	}

	log.Printf("Database connected (%s).", driver)
	DB = db
}

// SeedAdmin makes sure the dashboard's admin card has something to show.
func SeedAdmin(db *gorm.DB) error {
	admin := Admin{
		Id:        1,
		Name:      "Nagateja Goli",
		Email:     "nagatejareddygoli@gmail.com",
		Phone:     "+91 7994693055",
		PhotoPath: "/static_uploads/Nagateja Goli.jpg",
	}
	return db.FirstOrCreate(&admin, Admin{Id: 1}).Error
}

// Migrate creates/updates all tables. Split out so tests can run it
// against their own sqlite handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Student{},
		&SearchStudent{},
		&Attendance{},
		&Admin{},
	)
}
