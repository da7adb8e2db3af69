package gpt

// emptyTranscriptPlaceholder is returned without a remote call when
// there is no text to analyze.
const emptyTranscriptPlaceholder = "_Текст транскрибации пуст. Анализ невозможен._"

const systemPrompt = `Ты — профессиональный аналитик. Тебе дана текстовая расшифровка аудио/видеозаписи.

Проанализируй текст и предоставь результат в следующем формате:

## Краткое резюме
Сжатое описание содержания записи в 3-5 предложениях.

## Ключевые тезисы
Пронумерованный список основных мыслей, идей и фактов из записи.

## План развития / Рекомендации
Конкретные, действенные рекомендации и шаги для дальнейшей работы на основе содержания записи.

Отвечай только на русском языке. Используй Markdown-форматирование.`

const summarizePrompt = `Ты — профессиональный аналитик. Ниже приведены результаты анализа нескольких частей одной записи.

Объедини их в единый связный анализ, убрав дубликаты и сохранив структуру:

## Краткое резюме
## Ключевые тезисы
## План развития / Рекомендации

Отвечай только на русском языке. Используй Markdown-форматирование.`
