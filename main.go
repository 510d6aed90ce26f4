package main

import (
	"context"
	"fmt"
	"log"

	"legispuls/config"
	"legispuls/db"
	"legispuls/feeder"
	"legispuls/models"
	"legispuls/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()

	// Initialize MongoDB
	ctx := context.Background()
	if err := db.Init(ctx); err != nil {
		log.Fatal("failed to initialize MongoDB: ", err)
	}

	consultationRepo := repositories.NewConsultationRepository(db.Database())

	for _, feed := range cfg.Feeds {
		entityType, err := models.ParseEntityType(feed.EntityType)
		if err != nil {
			log.Printf("skip feed %s: %v", feed.Name, err)
			continue
		}

		items, err := feeder.FetchRssFeeds(feed.RSSURL, 50)
		if err != nil {
			log.Printf("failed to fetch feed %s (%s): %v", feed.Name, feed.RSSURL, err)
			continue
		}

		for i, item := range items {
			fmt.Printf("%s \t%d. Tytuł: %s\nLink: %s\nData publikacji: %s\n\n", feed.Name, i, item.Title, item.Link, item.PublishedAt)
			c := &models.Consultation{
				EntityType:  entityType,
				Title:       item.Title,
				Description: item.Description,
				Institution: feed.Institution,
				SourceName:  feed.Name,
				SourceURL:   item.Link,
			}
			if !item.PublishedAt.IsZero() {
				c.PublishedAt = item.PublishedAt
			}
			if _, err := consultationRepo.UpsertBySourceURL(ctx, c); err != nil {
				log.Printf("failed to upsert consultation (feed=%s, title=%s): %v", feed.Name, item.Title, err)
			}
		}
	}
}
