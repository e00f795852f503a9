package main

import (
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"

	"ai-parenting-be/internal/model"
	"ai-parenting-be/pkg/database"
)

// Seeds a demo caregiver with two child profiles so the chat engine has
// context facts and scopes to work with during local development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding demo caregiver and children...")

	userId := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	caregiver := model.CaregiverProfile{
		Id:             uuid.New(),
		UserId:         userId,
		Relationship:   "mother",
		ParentingStyle: "authoritative",
		Notes:          "Works full time, partner travels often.",
	}
	if err := db.Where("user_id = ?", userId).FirstOrCreate(&caregiver, model.CaregiverProfile{UserId: userId}).Error; err != nil {
		color.Red("Failed to seed caregiver profile: %v", err)
		os.Exit(1)
	}
	color.Green("Caregiver profile: %s", caregiver.Id)

	births := []time.Time{
		time.Now().AddDate(-4, 0, 0),
		time.Now().AddDate(-8, -6, 0),
	}
	children := []model.ChildProfile{
		{
			Id:                 uuid.New(),
			UserId:             userId,
			Name:               "Mia",
			BirthDate:          &births[0],
			DevelopmentalStage: "preschool",
			Characteristics:    datatypes.NewJSONSlice([]string{"curious", "strong-willed"}),
			CurrentChallenges:  datatypes.NewJSONSlice([]string{"picky eating", "bedtime resistance"}),
		},
		{
			Id:                 uuid.New(),
			UserId:             userId,
			Name:               "Leo",
			BirthDate:          &births[1],
			DevelopmentalStage: "middle childhood",
			SpecialNeeds:       "mild dyslexia",
			Characteristics:    datatypes.NewJSONSlice([]string{"quiet", "loves drawing"}),
			CurrentChallenges:  datatypes.NewJSONSlice([]string{"homework frustration"}),
		},
	}

	for i := range children {
		child := &children[i]
		if err := db.Where("user_id = ? AND name = ?", userId, child.Name).FirstOrCreate(child, model.ChildProfile{UserId: userId, Name: child.Name}).Error; err != nil {
			color.Red("Failed to seed child %s: %v", child.Name, err)
			os.Exit(1)
		}
		color.Green("Child profile: %s (%s)", child.Name, child.Id)
	}

	color.Cyan("Seeding complete. Demo user id: %s", userId)
}
