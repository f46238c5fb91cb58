// Command seed runs scripted respondents through the survey engine and
// stores their finished documents, so host endpoints have data to show.
package main

import (
	"context"
	"os"
	"time"

	"surveyassistant/internal/config"
	"surveyassistant/internal/model"
	"surveyassistant/internal/pkg/logger"
	"surveyassistant/internal/repository"
	"surveyassistant/internal/survey"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const module = "seed"

var scripts = [][]string{
	{
		"ready", "34", "68 kg", "5'6\"", "Female", "East Asian, Basque",
		"Asthma, Other", "2004", "migraines",
		"tonsillectomy (1998)", "Nuts", "hives",
		"yes", "Albuterol", "90mcg", "as needed", "asthma", "no",
		"yes", "Vitamin D", "1000 IU", "daily", "bone health", "no",
		"TCM, Ayurveda", "Apple Watch, OURA Ring",
	},
	{
		"ok", "58", "190 lbs", "180cm", "Male", "Northern European/Caucasian",
		"High blood pressure, Gout", "2015", "unknown",
		"none", "none",
		"yes", "Lisinopril", "10mg", "daily", "blood pressure", "no",
		"none", "all", "none",
	},
	{
		"sure", "26", "skip", "not sure", "skip", "South Asian", "None", "done",
	},
}

func main() {
	cfg := config.Load()
	log := logger.NewZapLogger(cfg.LogFilePath, cfg.IsProduction())
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Error(module, "failed to connect to MongoDB", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewResultRepo(client.Database(cfg.MongoDB))
	for _, script := range scripts {
		result := complete(script, log)
		if err := repo.Save(ctx, result); err != nil {
			log.Error(module, "failed to save result", map[string]interface{}{"session_id": result.SessionID, "error": err.Error()})
			os.Exit(1)
		}
		log.Info(module, "seeded result", map[string]interface{}{
			"session_id": result.SessionID,
			"answered":   result.Document.Meta.Progress.Answered,
		})
	}
}

// complete feeds a script to a fresh engine. A script that runs out
// before the catalog does is ended with a termination token.
func complete(script []string, log logger.ILogger) *model.SurveyResult {
	engine := survey.NewEngine(survey.DefaultCatalog(), survey.WithLogger(log))
	for _, answer := range script {
		if engine.Submit(answer).Done {
			break
		}
	}
	if engine.Mode() != survey.ModeFinished {
		engine.Submit("done")
	}

	doc := engine.Document()
	return &model.SurveyResult{
		SessionID:   "s_" + uuid.New().String()[:8],
		Document:    doc,
		CompletedAt: *doc.Meta.CompletedAt,
		CreatedAt:   time.Now(),
	}
}
