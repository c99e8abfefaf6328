package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"

	"sparkmatch/internal/config"
	"sparkmatch/internal/database"
	"sparkmatch/internal/models"
	"sparkmatch/internal/services"
	"sparkmatch/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	maleNames   = []string{"Alexei", "Dmitry", "Ivan", "Mikhail", "Sergei", "Nikolai", "Pavel", "Andrei", "Viktor", "Oleg"}
	femaleNames = []string{"Anna", "Elena", "Olga", "Natalia", "Maria", "Irina", "Svetlana", "Tatiana", "Yulia", "Ekaterina"}
	lastNames   = []string{"Ivanov", "Petrov", "Sidorov", "Smirnov", "Kuznetsov", "Popov", "Volkov", "Sokolov", "Morozov", "Novikov"}
	cities      = []string{"Moscow", "Saint Petersburg", "Novosibirsk", "Yekaterinburg", "Kazan", "Samara", "Omsk", "Rostov"}
	hobbyPool   = []string{"music", "movies", "travel", "cooking", "reading", "fitness", "photography", "dancing", "hiking", "gaming"}
	statuses    = []string{"looking", "relationship", "married", "complicated"}
)

func main() {
	userCount := flag.Int("users", 100, "number of users to create")
	interactionCount := flag.Int("interactions", 500, "number of interactions to create")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg := config.Load()
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	logrus.WithField("count", *userCount).Info("Creating users")

	passwordHash, err := utils.HashPassword("password123")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to hash seed password")
	}

	var userIDs []uint
	for i := 0; i < *userCount; i++ {
		gender := "M"
		firstName := maleNames[rand.Intn(len(maleNames))]
		if rand.Intn(2) == 0 {
			gender = "F"
			firstName = femaleNames[rand.Intn(len(femaleNames))]
		}

		user := models.User{
			Email:        fmt.Sprintf("%s.%d@example.com", firstName, i),
			PasswordHash: passwordHash,
			FirstName:    firstName,
			LastName:     lastNames[rand.Intn(len(lastNames))],
			Gender:       gender,
			Age:          18 + rand.Intn(48),
			City:         cities[rand.Intn(len(cities))],
			Hobbies:      randomHobbies(),
			Status:       statuses[rand.Intn(len(statuses))],
		}
		if err := db.Create(&user).Error; err != nil {
			logrus.WithError(err).Fatal("Failed to create user")
		}
		if err := db.Create(&models.UserProfile{UserID: user.ID}).Error; err != nil {
			logrus.WithError(err).Fatal("Failed to create profile")
		}
		userIDs = append(userIDs, user.ID)
	}

	logrus.WithField("count", *interactionCount).Info("Creating interactions")

	// Interactions are driven through the service so likes bump counters and
	// mutual likes form matches the same way they do in production.
	interactions := services.NewInteractionService(db)
	actions := []string{models.ActionLike, models.ActionLike, models.ActionLike, models.ActionDislike, models.ActionSuperLike}

	created := 0
	for created < *interactionCount {
		from := userIDs[rand.Intn(len(userIDs))]
		to := userIDs[rand.Intn(len(userIDs))]
		if from == to {
			continue
		}

		_, _, err := interactions.RecordInteraction(context.Background(), from, to, actions[rand.Intn(len(actions))])
		if err != nil {
			if errors.Is(err, services.ErrDuplicateInteraction) {
				continue
			}
			logrus.WithError(err).Fatal("Failed to create interaction")
		}
		created++
	}

	var matchCount int64
	db.Model(&models.Match{}).Count(&matchCount)
	logrus.WithFields(logrus.Fields{
		"users":        len(userIDs),
		"interactions": created,
		"matches":      matchCount,
	}).Info("Seeding complete")
}

func randomHobbies() string {
	n := 2 + rand.Intn(4)
	picked := make([]string, 0, n)
	for _, idx := range rand.Perm(len(hobbyPool))[:n] {
		picked = append(picked, hobbyPool[idx])
	}
	result := ""
	for i, h := range picked {
		if i > 0 {
			result += ", "
		}
		result += h
	}
	return result
}
