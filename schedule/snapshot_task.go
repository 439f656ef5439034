package main

import (
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	logger "github.com/sirupsen/logrus"

	"presalecontrol/internal/handlers/business"
	"presalecontrol/internal/models"
	dbconfig "presalecontrol/pkg/config"
)

// getZeroSecondTime truncates t to the minute
func getZeroSecondTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// RecordPresaleSnapshot captures the current presale totals into a snapshot
// row. Skips quietly while the presale is not configured yet.
func RecordPresaleSnapshot() error {
	logger.Info("> recording presale snapshot")

	stats, err := business.CalculatePresaleStats(dbconfig.DB)
	if err != nil {
		if errors.Is(err, business.ErrPresaleNotConfigured) {
			logger.Info("> presale not configured yet, skipping snapshot")
			return nil
		}
		logger.Errorf("> failed to calculate presale stats: %v", err)
		return err
	}

	snapshot := models.PresaleSnapshot{
		AmountRaised:       stats.AmountRaised,
		InvestorCount:      stats.InvestorCount,
		TokensOwed:         stats.TokensOwed,
		TokensClaimed:      stats.TokensClaimed,
		CustodyLamports:    stats.CustodyLamports,
		IsLive:             stats.IsLive,
		CreatedAtByZeroSec: getZeroSecondTime(time.Now()),
	}

	if err := dbconfig.DB.Create(&snapshot).Error; err != nil {
		logger.Errorf("> failed to create presale snapshot: %v", err)
		return err
	}

	logger.Infof("> presale snapshot recorded: raised=%d investors=%d", stats.AmountRaised, stats.InvestorCount)
	return nil
}

func main() {
	os.MkdirAll("logs", 0755)
	file, err := os.OpenFile("logs/presale_snapshot.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logger.SetOutput(file)
	} else {
		logger.Warn("cannot open log file, logging to stdout")
	}

	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logger.InfoLevel)
	logger.Info("> starting snapshot scheduler...")

	dbconfig.InitDB()
	logger.Info("> database connection initialized")

	c := cron.New(cron.WithSeconds())

	// Every 5 minutes
	_, err = c.AddFunc("0 */5 * * * *", func() {
		if err := RecordPresaleSnapshot(); err != nil {
			logger.Errorf("> snapshot run failed: %v", err)
		}
	})
	if err != nil {
		logger.Fatalf("> failed to add cron job: %v", err)
	}

	logger.Info("> snapshot job scheduled every 5 minutes")

	c.Start()

	select {}
}
