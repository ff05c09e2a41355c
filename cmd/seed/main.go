// Command seed populates a development database with a checkout
// session and a few integration logs in each status, and prints an
// operator token for the secured retry endpoints.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"paylog/internal/auth"
	"paylog/internal/config"
	"paylog/internal/db"
	"paylog/internal/model"
	"paylog/internal/repository"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.MySQLDSN, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("database init")
	}
	if err := gormDB.AutoMigrate(&model.IntegrationLog{}, &model.SessionLog{}); err != nil {
		log.Fatal().Err(err).Msg("auto-migrate")
	}

	ctx := context.Background()
	logRepo := repository.NewIntegrationLogRepository(gormDB)
	sessionRepo := repository.NewSessionLogRepository(gormDB, nil)

	session := &model.SessionLog{
		ReferenceDoctype: "sales-order",
		ReferenceID:      "SO-0001",
		Status:           model.SessionStatusCreated,
	}
	if err := sessionRepo.Create(ctx, session); err != nil {
		log.Fatal().Err(err).Msg("seed session")
	}

	txData := model.TxData{
		Amount:           decimal.NewFromFloat(49.90),
		Currency:         "EUR",
		ReferenceDoctype: session.ReferenceDoctype,
		ReferenceID:      session.ReferenceID,
	}
	payload, _ := txData.Marshal()

	for _, status := range []model.LogStatus{
		model.LogStatusQueued,
		model.LogStatusError,
		model.LogStatusError,
	} {
		rec := &model.IntegrationLog{
			SessionID:      &session.ID,
			HandlerRef:     "payzen",
			RequestPayload: payload,
			Status:         status,
		}
		if status == model.LogStatusError {
			answer, _ := json.Marshal(map[string]string{"orderStatus": "UNPAID"})
			rec.ResponsePayload = string(answer)
			rec.Message = "payment not confirmed: UNPAID"
		}
		if err := logRepo.Create(ctx, rec); err != nil {
			log.Fatal().Err(err).Msg("seed integration log")
		}
		fmt.Printf("integration log %s (%s)\n", rec.ID, status)
	}

	token, err := auth.NewJWTService(cfg.JWTSecret).GenerateOperatorToken("seed-operator", 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("generate operator token")
	}
	fmt.Printf("session %s\noperator token: Bearer %s\n", session.ID, token)
}
