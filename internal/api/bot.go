package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "fiber-meter/internal/application"
	"fiber-meter/internal/container"
	"fiber-meter/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для считывания длины волокна с фотографий.

📸 Отправьте фото с рукописной отметкой длины, и я извлеку число в метрах.

📋 Команды:
/measure — замер по одному фото
/compare — разница длин по двум фото
/history — последние замеры
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /measure и одно фото — бот вернёт длину и уверенность
2️⃣ /compare и два фото подряд — бот посчитает разницу длин
3️⃣ Фото можно отправить и без команды — это одиночный замер

💡 Рекомендации:
• Цифры должны быть крупными и чёткими
• Снимайте при хорошем освещении, без бликов
• Можно отправлять фото файлом (jpg, png, bmp, tiff, gif)

📋 Команды:
/measure — одиночный замер
/compare — сравнение двух фото
/history — последние замеры
/cancel — отменить операцию`

	msgAwaitingPhoto       = "📸 Отправьте фото с отметкой длины."
	msgAwaitingFirstPhoto  = "📸 Отправьте первое фото для сравнения."
	msgAwaitingSecondPhoto = "📸 Первое фото получено. Теперь отправьте второе."
	msgCancelled           = "❌ Операция отменена. Отправьте /measure или /compare."
	msgSendPhoto           = "📸 Пожалуйста, отправьте фото с отметкой длины."
	msgUnknownCommand      = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing          = "⏳ Обрабатываю изображение..."
	msgProcessingError     = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgHistoryDisabled     = "📭 Журнал замеров выключен."
	msgHistoryEmpty        = "📭 Замеров пока нет."
	msgNotImage            = "⚠️ Этот файл не похож на изображение."

	historyLimit = 10
)

// botAPI описывает часть клиента Telegram, которой пользуется бот.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	client   *tgbotapi.BotAPI
	api      botAPI
	token    string
	services *container.Container
	download func(ctx context.Context, url string) ([]byte, error)
	logger   *zap.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, logger *zap.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(client, token, services, logger)
	b.client = client
	b.logger.Info("authorized on account", zap.String("username", client.Self.UserName))
	return b, nil
}

func newBot(api botAPI, token string, services *container.Container, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:      api,
		token:    token,
		services: services,
		download: httpDownload,
		logger:   logger,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	if b.client == nil {
		return errors.New("telegram client is not initialized")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.client.GetUpdatesChan(u)
	defer b.client.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}

	session, err := b.services.SessionService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get session failed", zap.Error(err))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, session)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		b.handleImage(ctx, msg, session, photo.FileID, "photo.jpg")
		return
	}

	if doc := msg.Document; doc != nil {
		if !isImageDocument(doc) {
			b.sendMessage(msg.Chat.ID, msgNotImage)
			return
		}
		b.handleImage(ctx, msg, session, doc.FileID, doc.FileName)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, session *entity.Session) {
	userID, chatID := session.UserID, msg.Chat.ID
	sessions := b.services.SessionService

	switch msg.Command() {
	case "start":
		b.resetSession(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "measure":
		b.services.MeasurementService.ForgetFirstPhoto(userID)
		if _, err := sessions.BeginSingle(ctx, userID, chatID); err != nil {
			b.logger.Error("begin single failed", zap.Error(err))
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "compare":
		b.services.MeasurementService.ForgetFirstPhoto(userID)
		if _, err := sessions.BeginDual(ctx, userID, chatID); err != nil {
			b.logger.Error("begin dual failed", zap.Error(err))
		}
		b.sendMessage(chatID, msgAwaitingFirstPhoto)

	case "history":
		b.sendHistory(ctx, chatID)

	case "cancel":
		b.resetSession(ctx, userID, chatID)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage обрабатывает фото или файл-изображение в зависимости от состояния сессии
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, session *entity.Session, fileID, name string) {
	userID, chatID := session.UserID, msg.Chat.ID

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("download photo failed", zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		b.resetSession(ctx, userID, chatID)
		return
	}
	img := app.Image{Name: name, Data: imageData}
	measurements := b.services.MeasurementService

	switch session.State {
	case entity.StateAwaitingFirstPhoto:
		if _, err := measurements.AcceptFirstPhoto(ctx, userID, chatID, img); err != nil {
			b.logger.Error("accept first photo failed", zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingSecondPhoto)

	case entity.StateAwaitingSecondPhoto:
		b.sendMessage(chatID, msgProcessing)
		c, err := measurements.CompareWithFirst(ctx, userID, chatID, img)
		if err != nil {
			b.logger.Warn("compare failed", zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			b.resetSession(ctx, userID, chatID)
			return
		}
		b.sendMessage(chatID, formatComparison(c))

	default:
		// Устанавливаем состояние "обработка"
		if _, err := b.services.SessionService.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
			b.logger.Error("set state failed", zap.Error(err))
		}
		b.sendMessage(chatID, msgProcessing)

		reading, err := measurements.Analyze(ctx, entity.SourceBot, img)
		if err != nil {
			b.logger.Warn("analyze failed", zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
		} else {
			b.sendMessage(chatID, formatReading(reading))
		}

		// Возвращаем в главное меню
		b.resetSession(ctx, userID, chatID)
	}
}

func (b *Bot) sendHistory(ctx context.Context, chatID int64) {
	records, err := b.services.HistoryService.Recent(ctx, historyLimit)
	switch {
	case errors.Is(err, entity.ErrHistoryDisabled):
		b.sendMessage(chatID, msgHistoryDisabled)
		return
	case err != nil:
		b.logger.Error("history failed", zap.Error(err))
		b.sendMessage(chatID, msgProcessingError)
		return
	case len(records) == 0:
		b.sendMessage(chatID, msgHistoryEmpty)
		return
	}
	b.sendMessage(chatID, formatHistory(records))
}

func (b *Bot) resetSession(ctx context.Context, userID, chatID int64) {
	b.services.MeasurementService.ForgetFirstPhoto(userID)
	if _, err := b.services.SessionService.Cancel(ctx, userID, chatID); err != nil {
		b.logger.Error("reset session failed", zap.Error(err))
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return b.download(ctx, file.Link(b.token))
}

func httpDownload(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func isImageDocument(doc *tgbotapi.Document) bool {
	if strings.HasPrefix(doc.MimeType, "image/") {
		return true
	}
	return entity.IsImageFile(doc.FileName)
}
