package cmd

import (
	"flag"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"guestchat-backend/internal/database"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// SeedDemoData inserts a demo recruiter and job so a fresh install can issue
// invitations immediately. Idempotent across restarts.
func SeedDemoData(db *gorm.DB) {
	recruiterID := uuid.New()
	var recruiter database.Recruiter
	if err := db.Where(database.Recruiter{Email: "demo.recruiter@example.com"}).Attrs(database.Recruiter{
		ID:      recruiterID,
		Name:    "Demo Recruiter",
		Company: "Example Corp",
	}).FirstOrCreate(&recruiter).Error; err != nil {
		log.Fatalf("Failed to create demo recruiter record: %v", err)
	}

	var job database.Job
	if err := db.Where(database.Job{Title: "Senior Backend Engineer", RecruiterID: recruiter.ID}).Attrs(database.Job{
		ID:       uuid.New(),
		Company:  recruiter.Company,
		Location: "Remote",
	}).FirstOrCreate(&job).Error; err != nil {
		log.Fatalf("Failed to create demo job record: %v", err)
	}
}
