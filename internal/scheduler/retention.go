package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-analytics-api/infrastructure/repository"
	"github.com/vfg2006/sales-analytics-api/internal/config"
)

// DataRetentionConfig representa a configuração do agendador de retenção de dados
type DataRetentionConfig struct {
	CronSchedule string
	MaxAgeDays   int
	Enabled      bool
}

// DataRetentionService gerencia o agendamento e execução da limpeza de registros antigos
type DataRetentionService struct {
	scheduler          *gocron.Scheduler
	config             DataRetentionConfig
	recordRepo         repository.SalesRecordRepository
	runRunning         bool
	runMutex           sync.Mutex
	lastRunStartedAt   time.Time
	lastRunCompletedAt time.Time
}

// NewDataRetentionService cria uma nova instância do serviço de retenção de dados
func NewDataRetentionService(
	recordRepo repository.SalesRecordRepository,
	appConfig *config.Config,
) *DataRetentionService {
	// Criar a configuração com base na config global
	retentionConfig := DataRetentionConfig{
		CronSchedule: appConfig.DataRetention.CronSchedule,
		MaxAgeDays:   appConfig.DataRetention.MaxAgeDays,
		Enabled:      appConfig.DataRetention.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": retentionConfig.CronSchedule,
		"max_age_days":  retentionConfig.MaxAgeDays,
		"enabled":       retentionConfig.Enabled,
	}).Info("Configuração do agendador de retenção de dados carregada")

	return &DataRetentionService{
		scheduler:  scheduler,
		config:     retentionConfig,
		recordRepo: recordRepo,
		runRunning: false,
	}
}

// Start inicia o agendador
func (s *DataRetentionService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Limpeza de registros antigos desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador de retenção de dados")

	// Agendar a limpeza de registros antigos
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.purgeOldRecords()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de registros antigos: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de retenção de dados")
		s.scheduler.Stop()
	}()

	return nil
}

// purgeOldRecords remove os registros de vendas mais antigos que o limite configurado
func (s *DataRetentionService) purgeOldRecords() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Limpeza de registros antigos já em andamento, ignorando")
		return
	}
	s.runRunning = true
	s.runMutex.Unlock()

	startTime := time.Now()
	s.lastRunStartedAt = startTime

	defer func() {
		s.runMutex.Lock()
		s.runRunning = false
		s.runMutex.Unlock()
		s.lastRunCompletedAt = time.Now()
	}()

	logrus.WithField("max_age_days", s.config.MaxAgeDays).Info("Iniciando limpeza de registros antigos")

	deleted, err := s.recordRepo.DeleteOlderThan(s.config.MaxAgeDays)
	if err != nil {
		logrus.WithError(err).Error("Erro ao remover registros antigos")
		return
	}

	logrus.WithFields(logrus.Fields{
		"rows_deleted": deleted,
		"duration":     time.Since(startTime).String(),
	}).Info("Limpeza de registros antigos concluída")
}
