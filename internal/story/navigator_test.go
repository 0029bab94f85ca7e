package story_test

import (
	"testing"

	"github.com/myrjola/sherlockchat/internal/models"
	"github.com/myrjola/sherlockchat/internal/story"
	"github.com/stretchr/testify/require"
)

func newNavigator() *story.Navigator {
	return story.NewNavigator(&models.Case{ //nolint:exhaustruct // only the story matters
		Story: map[string]models.StoryNode{
			"start": {ID: "", Text: "문이 두 개 있다.", Choices: []string{"왼쪽", "오른쪽"},
				Next: map[string]string{"왼쪽": "left", "오른쪽": "right"}},
			"left":  {ID: "", Text: "어두운 복도.", Choices: nil, Next: map[string]string{"돌아간다": "start", "전진": "end"}},
			"right": {ID: "", Text: "막다른 길.", Choices: nil, Next: nil},
			"end":   {ID: "", Text: "끝.", Choices: nil, Next: nil},
		},
	})
}

func TestNavigator_Node(t *testing.T) {
	nav := newNavigator()

	start, err := nav.Node(story.StartNodeID)
	require.NoError(t, err)
	require.Equal(t, "start", start.ID)
	require.Equal(t, []string{"왼쪽", "오른쪽"}, start.Choices)

	left, err := nav.Node("left")
	require.NoError(t, err)
	require.Equal(t, []string{"돌아간다", "전진"}, left.Choices)

	_, err = nav.Node("attic")
	require.ErrorIs(t, err, story.ErrNodeNotFound)
}

func TestNavigator_Choose(t *testing.T) {
	nav := newNavigator()

	left, err := nav.Choose("start", "왼쪽")
	require.NoError(t, err)
	require.Equal(t, "어두운 복도.", left.Text)

	end, err := nav.Choose("left", "전진")
	require.NoError(t, err)
	require.Equal(t, "end", end.ID)

	_, err = nav.Choose("start", "위쪽")
	require.ErrorIs(t, err, story.ErrInvalidChoice)

	_, err = nav.Choose("attic", "왼쪽")
	require.ErrorIs(t, err, story.ErrNodeNotFound)
}
