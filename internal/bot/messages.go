package bot

const (
	msgWelcome = "👋 Добро пожаловать в Transcribe Bot!\n\n🔒 Для доступа введите пароль:"

	msgAlreadyAuthorized = "✅ Вы уже авторизованы! Отправьте аудио или видеофайл для транскрибации.\n" +
		"Используйте /help для справки."

	msgAuthorized = "✅ Добро пожаловать! Вы авторизованы.\n\n" +
		"📎 Отправьте аудио или видеофайл для транскрибации.\n" +
		"Используйте /help для получения справки."

	msgWrongPassword = "❌ Неверный пароль. Попробуйте ещё раз:"

	msgLoggedOut = "👋 Вы вышли из системы.\nДля повторного входа отправьте /start"

	msgNoHistory = "📭 У вас пока нет транскрибаций."

	msgNotFound = "❌ Транскрибация не найдена."

	msgUnknown = "🤔 Отправьте аудио или видеофайл для транскрибации или используйте /help для справки."

	msgUnsupportedFormat = "❌ Неподдерживаемый формат файла.\n" +
		"Отправьте аудио (OGG, MP3, WAV, FLAC, M4A) или видео (MP4, AVI, MOV, MKV, WEBM)."

	msgFileAccepted = "⏳ Файл получен, начинаю обработку..."

	msgDownloadFailed = "❌ Не удалось скачать файл. Попробуйте ещё раз."

	msgDocumentFailed = "❌ Ошибка при генерации документа. Попробуйте позже."

	msgHelp = "📖 *Transcribe Bot — Справка*\n\n" +
		"*Как использовать:*\n" +
		"1. Отправьте аудио или видеофайл боту\n" +
		"2. Дождитесь транскрибации и анализа\n" +
		"3. Получите результат с возможностью скачать DOCX\n\n" +
		"*Поддерживаемые форматы:*\n" +
		"🎵 Аудио: OGG, MP3, WAV, FLAC, M4A\n" +
		"🎬 Видео: MP4, AVI, MOV, MKV, WEBM\n\n" +
		"*Команды:*\n" +
		"/start — авторизация\n" +
		"/help — эта справка\n" +
		"/history — история транскрибаций\n" +
		"/status — состояние очереди\n" +
		"/cost — стоимость последней транскрибации\n" +
		"/logout — выход из системы\n\n" +
		"*Ограничения:*\n" +
		"• Макс. длительность: 4 часа\n" +
		"• Язык: только русский"
)
