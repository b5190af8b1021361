package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soulmatch/soulmatch-backend/internal/config"
	"github.com/soulmatch/soulmatch-backend/internal/database"
	"github.com/soulmatch/soulmatch-backend/internal/logger"
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"github.com/soulmatch/soulmatch-backend/internal/repository"
	"github.com/soulmatch/soulmatch-backend/internal/service"
)

type seedProfile struct {
	bio       string
	interests []string
	tags      []string
}

var seeds = []seedProfile{
	{"New in Aarhus and looking for people to go hiking with.", []string{"Hiking", "Photography"}, []string{"Curious", "Outdoorsy"}},
	{"Board game nights are my favourite way to meet people.", []string{"Board games", "Cooking"}, []string{"Social", "Playful"}},
	{"Retired teacher who loves choir singing and long walks.", []string{"Music", "Walking"}, []string{"Warm", "Patient"}},
	{"Student at KU, into climbing and indie films.", []string{"Climbing", "Film"}, []string{"Adventurous"}},
	{"I knit, I read, and I would like a book club.", []string{"Reading", "Crafts"}, []string{"Calm", "Thoughtful"}},
	{"Software developer, runner, always up for coffee.", []string{"Running", "Coffee", "Tech"}, []string{"Driven"}},
	{"Just moved from Odense. Looking for dance partners!", []string{"Dancing"}, []string{"Energetic", "Social"}},
	{"Volunteer at the local food bank, love gardening.", []string{"Gardening", "Volunteering"}, []string{"Caring"}},
}

func main() {
	withTokens := flag.Bool("tokens", false, "Print a development access token for every profile")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	profileRepo := repository.NewProfileRepository(pool)
	authService := service.NewAuthService(cfg)

	fmt.Printf("=== Seeding %d Profiles ===\n", len(seeds))

	for i, s := range seeds {
		p := &model.Profile{ID: uuid.New(), Bio: s.bio}
		if err := profileRepo.Create(ctx, p); err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("Failed to create profile")
		}
		if err := profileRepo.AttachInterests(ctx, p.ID, s.interests); err != nil {
			log.Fatal().Err(err).Str("profile_id", p.ID.String()).Msg("Failed to attach interests")
		}
		if err := profileRepo.AttachPersonalityTags(ctx, p.ID, s.tags); err != nil {
			log.Fatal().Err(err).Str("profile_id", p.ID.String()).Msg("Failed to attach personality tags")
		}

		fmt.Printf("%2d. %s  %s\n", i+1, p.ID, s.bio)
		if *withTokens {
			tok, err := authService.IssueToken(p.ID, "")
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to issue token")
			}
			fmt.Printf("    token: %s\n", tok)
		}
	}

	fmt.Println("=== Seeding Complete ===")
}
