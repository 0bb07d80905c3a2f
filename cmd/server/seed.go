package main

import (
	"context"
	"fmt"

	"github.com/UkralStul/wikikisan-service/internal/community"
	"github.com/UkralStul/wikikisan-service/internal/domain"
	"go.uber.org/zap"
)

// samplePosts - обсуждения фермеров для демо и локальной разработки.
var samplePosts = []community.PostInput{
	{
		Title:    "Best organic pesticide for Gadwal Red Chilli?",
		Content:  "I am seeing some white spots on my chilli leaves. Is there a natural neem-based solution?",
		Type:     domain.PostTypeQuestion,
		Category: "crops",
		Language: "en",
		Tags:     []string{"chilli", "organic", "pests"},
	},
	{
		Title:    "Success Story: 20% increase in Paddy yield",
		Content:  "By switching to the SRI (System of Rice Intensification) method, I saved water and got a better harvest.",
		Type:     domain.PostTypeSuccessStory,
		Category: "crops",
		Language: "en",
		Tags:     []string{"paddy", "innovation", "water-saving"},
	},
	{
		Title:    "వరి సాగులో మెళకువలు (Paddy Farming Tips)",
		Content:  "ఈ ఖరీఫ్ సీజన్‌లో వరి సాగు చేసే రైతులకు కొన్ని ముఖ్యమైన సూచనలు...",
		Type:     domain.PostTypeTip,
		Category: "crops",
		Language: "te",
		Tags:     []string{"వరి", "ఖరీఫ్"},
	},
}

// fillWithSampleData создает посты через сервис, чтобы прошли валидация и события.
func fillWithSampleData(ctx context.Context, svc *community.Service) error {
	for _, in := range samplePosts {
		post, err := svc.CreatePost(ctx, in)
		if err != nil {
			return fmt.Errorf("fillWithSampleData: failed to create %q: %w", in.Title, err)
		}
		logger.Info("Seeded post", zap.String("id", post.ID), zap.String("title", post.Title))
	}
	logger.Info("Sample data filled successfully", zap.Int("posts", len(samplePosts)))
	return nil
}
