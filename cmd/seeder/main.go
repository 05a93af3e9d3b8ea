package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
)

// Sample tender project used for local development. The texts are long
// enough to exercise extraction and produce several knowledge chunks.
var sampleDocuments = []*core.Document{
	{
		Filename: "appel_offres.txt",
		Kind:     core.DocumentKindRFP,
		ExtractedText: `1. Contexte
La Ville lance un appel d'offres pour la refonte de son portail citoyen.

2. Questions aux soumissionnaires
2.1 Décrivez votre méthodologie de gestion de projet.
2.2 Décrivez la composition et l'expérience de l'équipe proposée.
2.3 Présentez votre plan de reprise des données existantes.

3. Conditions
3.1 Le prestataire doit être certifié ISO 27001.
3.2 L'hébergement doit être situé dans l'Union européenne.
3.3 Le support doit être assuré en français, du lundi au vendredi.`,
	},
	{
		Filename: "modele_reponse.txt",
		Kind:     core.DocumentKindTemplate,
		ExtractedText: `Structure attendue de la réponse:
1. Présentation de la société
2. Compréhension du besoin
3. Méthodologie
4. Équipe proposée
5. Planning et livrables
6. Engagements de service`,
	},
	{
		Filename: "soumission_2024.txt",
		Kind:     core.DocumentKindPastSubmission,
		ExtractedText: `Notre méthodologie repose sur des itérations de deux semaines avec
des démonstrations régulières au comité de pilotage. Chaque itération
se conclut par une revue et une rétrospective. L'équipe type réunit un
chef de projet certifié, un architecte et quatre développeurs. La
reprise des données s'appuie sur des migrations rejouables validées en
environnement de recette avant toute bascule en production.`,
	},
	{
		Filename: "rapport_evaluation_2024.txt",
		Kind:     core.DocumentKindAnalysisReport,
		ExtractedText: `Évaluation de la soumission 2024.
Points forts: méthodologie claire, équipe expérimentée.
Points faibles: le plan de réversibilité (section 5) manquait de
détail et le chiffrage du support n'était pas ventilé par niveau de
service.`,
	},
}

var (
	dbPath    = flag.String("db", "./reponsia_db", "path to the workspace database")
	projectID = flag.Uint64("project", 1, "project to seed")
	srcFile   = flag.String("src", "", "optional text file added as a past submission")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	repos, err := badger.NewRepositories(*dbPath)
	if err != nil {
		panic(err)
	}
	defer repos.Close()

	ctx := context.Background()
	docs := sampleDocuments
	if *srcFile != "" {
		text, err := os.ReadFile(*srcFile)
		if err != nil {
			panic(err)
		}
		docs = append(docs, &core.Document{
			Filename:      filepath.Base(*srcFile),
			Kind:          core.DocumentKindPastSubmission,
			ExtractedText: string(text),
		})
	}

	for _, doc := range docs {
		doc.ProjectId = core.ID(*projectID)
		doc.MimeType = "text/plain"
		added, err := repos.Documents.AddDocuments(ctx, doc)
		if err != nil {
			panic(err)
		}
		fmt.Printf("seeded %s as document %d\n", added[0].Filename, added[0].Id)
	}
}
