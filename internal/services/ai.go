package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
}

type GeneratedTask struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  int        `json:"difficulty"`
	DueDate     *time.Time `json:"due_date"`
}

type generatedAchievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func NewAIService(apiKey string) *AIService {
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// GenerateTasksFromText analyzes text and extracts tasks using OpenAI GPT
func (s *AIService) GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	currentTime := time.Now().Format("2006-01-02 15:04:05")
	prompt := fmt.Sprintf(`あなたはタスク抽出アシスタントです。以下のテキストから具体的なタスクを抽出してください。

現在時刻: %s

テキスト:
%s

以下のJSON形式で、抽出したタスクの配列を返してください:
[
  {
    "title": "タスクのタイトル（簡潔に）",
    "description": "タスクの詳細説明",
    "category": "カテゴリ（学習、健康、仕事、生活など）",
    "difficulty": 1から5の難易度,
    "due_date": "期限（ISO8601形式、例: 2025-10-28T23:59:59Z）。期限が明示されていない場合はnull"
  }
]

注意事項:
- タスクが1つもない場合は空の配列 [] を返してください
- 最大%d件まで抽出してください
- 期限は相対的な表現（「明日」「来週」など）を具体的な日時に変換してください
- due_dateは必ずISO8601形式の文字列、またはnullにしてください
- JSONのみを返し、説明文は含めないでください`, currentTime, text, constants.MaxAIGeneratedTasks)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	if len(tasks) > constants.MaxAIGeneratedTasks {
		tasks = tasks[:constants.MaxAIGeneratedTasks]
	}

	return tasks, nil
}

// GenerateAchievementForTask drafts a catalog achievement tied to completing
// one specific task. The reward scales with the task's difficulty.
func (s *AIService) GenerateAchievementForTask(ctx context.Context, task *models.Task) (*models.Achievement, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`あなたは実績デザイナーです。以下のタスクを完了したときに解除される実績を1つ作成してください。

タスク名: %s
説明: %s
カテゴリ: %s

以下のJSON形式で返してください:
{
  "name": "実績の名前（ゲーム風に格好良く）",
  "description": "実績の説明（1文）",
  "icon": "絵文字1文字"
}

JSONのみを返し、説明文は含めないでください`, task.Title, task.Description, task.Category)

	content, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var generated generatedAchievement
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	relatedID := task.ID
	return &models.Achievement{
		ID:               uuid.NewString(),
		Name:             generated.Name,
		Description:      generated.Description,
		Icon:             generated.Icon,
		Category:         task.Category,
		RequirementType:  models.RequirementTaskComplete,
		RequirementValue: 1,
		ExperienceReward: constants.AchievementXPPerDifficulty * task.Difficulty,
		RelatedTaskID:    &relatedID,
	}, nil
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
