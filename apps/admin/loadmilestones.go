package main

import (
	"context"

	"github.com/trezcool/malezi/core/milestone"
)

var defaultMilestones = []milestone.Milestone{
	{Category: milestone.CategoryMotor, Title: "Holds head up", Description: "Holds head steady when upright", MinMonths: 2, MaxMonths: 4},
	{Category: milestone.CategoryMotor, Title: "Rolls over", Description: "Rolls from tummy to back", MinMonths: 4, MaxMonths: 6},
	{Category: milestone.CategoryMotor, Title: "Sits without support", MinMonths: 6, MaxMonths: 9},
	{Category: milestone.CategoryMotor, Title: "Crawls", MinMonths: 7, MaxMonths: 10},
	{Category: milestone.CategoryMotor, Title: "Walks alone", Description: "Takes several steps unassisted", MinMonths: 11, MaxMonths: 15},
	{Category: milestone.CategoryMotor, Title: "Kicks a ball", MinMonths: 18, MaxMonths: 24},
	{Category: milestone.CategoryLanguage, Title: "Babbles", Description: "Strings vowel sounds together", MinMonths: 4, MaxMonths: 6},
	{Category: milestone.CategoryLanguage, Title: "First words", Description: "Says mama, dada or another word with meaning", MinMonths: 10, MaxMonths: 14},
	{Category: milestone.CategoryLanguage, Title: "Points to things", Description: "Points to show something interesting", MinMonths: 12, MaxMonths: 18},
	{Category: milestone.CategoryLanguage, Title: "Two-word phrases", MinMonths: 18, MaxMonths: 24},
	{Category: milestone.CategorySocial, Title: "Social smile", Description: "Smiles in response to people", MinMonths: 1, MaxMonths: 3},
	{Category: milestone.CategorySocial, Title: "Stranger anxiety", MinMonths: 6, MaxMonths: 12},
	{Category: milestone.CategorySocial, Title: "Plays alongside others", Description: "Parallel play with other children", MinMonths: 18, MaxMonths: 30},
	{Category: milestone.CategoryCognitive, Title: "Object permanence", Description: "Looks for hidden objects", MinMonths: 6, MaxMonths: 9},
	{Category: milestone.CategoryCognitive, Title: "Uses objects correctly", Description: "Drinks from a cup, brushes hair", MinMonths: 12, MaxMonths: 18},
	{Category: milestone.CategoryCognitive, Title: "Pretend play", Description: "Feeds a doll, talks on a toy phone", MinMonths: 18, MaxMonths: 30},
	{Category: milestone.CategoryCognitive, Title: "Sorts shapes and colors", MinMonths: 24, MaxMonths: 36},
}

// loadMilestones seeds the default catalog. It is a no-op when the catalog
// already has entries.
func (cli *commandLine) loadMilestones() error {
	ctx := context.Background()

	existing, err := cli.mlstRepo.QueryMilestones(ctx, milestone.QueryFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Printf("milestone catalog already has %d entries; skipping", len(existing))
		return nil
	}

	for _, m := range defaultMilestones {
		if _, err := cli.mlstRepo.CreateMilestone(ctx, m); err != nil {
			return err
		}
	}
	logger.Printf("loaded %d milestones", len(defaultMilestones))
	return nil
}
