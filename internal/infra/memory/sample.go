package memory

import "syllabus-service/internal/domain"

// SampleSubjects is a small demo catalogue; swap in a database-backed store
// for production.
func SampleSubjects() []domain.Subject {
	return []domain.Subject{
		{
			ID:    "math",
			Name:  "Mathematics",
			Order: 1,
			Quizzes: []domain.Quiz{
				{
					ID:    "math-q1",
					Title: "Calculus I - Limits",
					Questions: []domain.Question{
						{
							Text: "What is the limit of 1/x as x approaches infinity?",
							Type: domain.QuestionSingle,
							Options: []domain.Option{
								{ID: "a", Text: "0"},
								{ID: "b", Text: "1"},
								{ID: "c", Text: "Infinity"},
							},
							CorrectOptionIDs: []string{"a"},
							Explanation:      "1/x shrinks toward zero as x grows without bound.",
						},
						{
							Text: "Which of these limits exist?",
							Type: domain.QuestionMulti,
							Options: []domain.Option{
								{ID: "a", Text: "lim x->0 of sin(x)/x"},
								{ID: "b", Text: "lim x->0 of 1/x"},
								{ID: "c", Text: "lim x->2 of x^2"},
							},
							CorrectOptionIDs: []string{"a", "c"},
							Explanation:      "sin(x)/x tends to 1 and x^2 is continuous; 1/x diverges at 0.",
						},
					},
				},
				{ID: "math-q2", Title: "Linear Algebra Basics", Questions: []domain.Question{}},
			},
		},
		{
			ID:    "physics",
			Name:  "Physics",
			Order: 2,
			Quizzes: []domain.Quiz{
				{
					ID:    "phys-q1",
					Title: "Newtonian Laws",
					Questions: []domain.Question{
						{
							Text: "Force equals mass times what?",
							Type: domain.QuestionSingle,
							Options: []domain.Option{
								{ID: "a", Text: "Velocity"},
								{ID: "b", Text: "Acceleration"},
								{ID: "c", Text: "Momentum"},
							},
							CorrectOptionIDs: []string{"b"},
							Explanation:      "Newton's second law: F = ma.",
						},
					},
				},
			},
		},
		{ID: "biology", Name: "Biology", Order: 3, Quizzes: []domain.Quiz{
			{ID: "bio-q1", Title: "Cell Structure", Questions: []domain.Question{}},
		}},
		{ID: "chemistry", Name: "Chemistry", Order: 4, Quizzes: []domain.Quiz{
			{ID: "chem-q1", Title: "Periodic Table Mastery", Questions: []domain.Question{}},
		}},
	}
}
