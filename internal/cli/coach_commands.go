package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecf/careerprep/internal/coach"
	"github.com/alecf/careerprep/internal/models"
	"github.com/alecf/careerprep/internal/output"
	"github.com/alecf/careerprep/internal/resume"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your coaching profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				u, err := a.svc.Profile(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), u, "", func(w io.Writer) { output.Profile(w, u) })
			})
		},
	}

	var (
		name, industry, bio, skills string
		experience                  int
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Create or update your profile",
		Long: `Create or update your profile. Unset flags keep their current value.

Example:
  careerprep profile set --industry "Data Science" --experience 3 --skills Python,SQL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				var u models.User
				if existing, err := a.svc.Profile(cmd.Context(), a.userID()); err == nil {
					u = *existing
				}
				if cmd.Flags().Changed("name") {
					u.Name = name
				}
				if cmd.Flags().Changed("industry") {
					u.Industry = industry
				}
				if cmd.Flags().Changed("bio") {
					u.Bio = bio
				}
				if cmd.Flags().Changed("experience") {
					u.Experience = experience
				}
				if cmd.Flags().Changed("skills") {
					u.Skills = splitList(skills)
				}

				updated, err := a.svc.UpdateProfile(cmd.Context(), a.userID(), u)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), updated, "", func(w io.Writer) { output.Profile(w, updated) })
			})
		},
	}
	set.Flags().StringVar(&name, "name", "", "your name")
	set.Flags().StringVar(&industry, "industry", "", "your industry")
	set.Flags().StringVar(&bio, "bio", "", "a short professional bio")
	set.Flags().StringVar(&skills, "skills", "", "comma-separated skills")
	set.Flags().IntVar(&experience, "experience", 0, "years of experience")

	importResume := &cobra.Command{
		Use:   "import-resume <file>",
		Short: "Import resume text from a .txt, .pdf or .docx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read resume: %w", err)
			}
			return withApp(cmd, func(a *app) error {
				u, err := a.svc.ImportResume(cmd.Context(), a.userID(), resume.DetectType(args[0], ""), data)
				if err != nil {
					return profileHint(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d characters of resume text\n", len(u.ResumeText))
				return nil
			})
		},
	}

	cmd.AddCommand(set, importResume)
	return cmd
}

func coverLetterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cover-letter",
		Aliases: []string{"cl"},
		Short:   "Generate and manage cover letters",
	}

	var title, company, description, descriptionFile string
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a cover letter for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if descriptionFile != "" {
				data, err := os.ReadFile(descriptionFile)
				if err != nil {
					return fmt.Errorf("failed to read job description: %w", err)
				}
				description = string(data)
			}
			return withApp(cmd, func(a *app) error {
				cl, err := a.svc.GenerateCoverLetter(cmd.Context(), a.userID(), models.JobTarget{
					JobTitle:       title,
					CompanyName:    company,
					JobDescription: description,
				})
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), cl, cl.Source, func(w io.Writer) { output.CoverLetter(w, cl) })
			})
		},
	}
	generateCmd.Flags().StringVar(&title, "title", "", "job title")
	generateCmd.Flags().StringVar(&company, "company", "", "company name")
	generateCmd.Flags().StringVar(&description, "description", "", "job description")
	generateCmd.Flags().StringVar(&descriptionFile, "description-file", "", "read the job description from a file")
	generateCmd.MarkFlagRequired("title")
	generateCmd.MarkFlagRequired("company")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your cover letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				list, err := a.svc.CoverLetters(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), list, "", func(w io.Writer) { output.CoverLetters(w, list) })
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				cl, err := a.svc.CoverLetter(cmd.Context(), a.userID(), args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), cl, "", func(w io.Writer) { output.CoverLetter(w, cl) })
			})
		},
	}

	var contentFile string
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the content of a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(contentFile)
			if err != nil {
				return fmt.Errorf("failed to read content: %w", err)
			}
			return withApp(cmd, func(a *app) error {
				cl, err := a.svc.UpdateCoverLetter(cmd.Context(), a.userID(), args[0], string(data))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated cover letter %s\n", cl.ID)
				return nil
			})
		},
	}
	editCmd.Flags().StringVar(&contentFile, "file", "", "file holding the new content")
	editCmd.MarkFlagRequired("file")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a cover letter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.svc.DeleteCoverLetter(cmd.Context(), a.userID(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted cover letter %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(generateCmd, listCmd, showCmd, editCmd, deleteCmd)
	return cmd
}

func quizCmd() *cobra.Command {
	var take, answers bool
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Generate a multiple-choice interview quiz",
		Long: `Generate ten multiple-choice questions for your industry and skills.
With --take, answer them interactively and save the scored result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				res, err := a.svc.GenerateQuiz(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}

				if !take {
					return a.emit(cmd.OutOrStdout(), res.Value, string(res.Source), func(w io.Writer) {
						output.Quiz(w, res.Value, answers)
					})
				}

				given, score := takeQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), res.Value)
				assessment, err := a.svc.SaveQuizResult(cmd.Context(), a.userID(), res.Value.Questions, given, score)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), assessment, string(res.Source), func(w io.Writer) {
					output.Assessment(w, assessment)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&take, "take", false, "answer the quiz interactively and save the result")
	cmd.Flags().BoolVar(&answers, "answers", false, "show correct answers and explanations")
	return cmd
}

// takeQuiz asks each question on w and reads a lettered answer per line
// from r. Unreadable or out-of-range answers count as unanswered.
func takeQuiz(r io.Reader, w io.Writer, quiz models.Quiz) ([]string, float64) {
	scanner := bufio.NewScanner(r)
	given := make([]string, len(quiz.Questions))
	var correct int

	for i, q := range quiz.Questions {
		output.Quiz(w, models.Quiz{Questions: []models.QuizQuestion{q}}, false)
		fmt.Fprint(w, "Your answer: ")
		if !scanner.Scan() {
			break
		}

		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(choice) == 1 && choice[0] >= 'a' && int(choice[0]-'a') < len(q.Options) {
			given[i] = q.Options[choice[0]-'a']
		}
		if given[i] == q.CorrectAnswer {
			correct++
			fmt.Fprintln(w, "✓ Correct")
		} else {
			fmt.Fprintf(w, "✗ Correct answer: %s\n", q.CorrectAnswer)
		}
		fmt.Fprintln(w)
	}

	if len(quiz.Questions) == 0 {
		return given, 0
	}
	return given, 100 * float64(correct) / float64(len(quiz.Questions))
}

func questionsCmd() *cobra.Command {
	var description, descriptionFile string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate interview questions for a job",
		RunE: func(cmd *cobra.Command, args []string) error {
			if descriptionFile != "" {
				data, err := os.ReadFile(descriptionFile)
				if err != nil {
					return fmt.Errorf("failed to read job description: %w", err)
				}
				description = string(data)
			}
			return withApp(cmd, func(a *app) error {
				res, err := a.svc.GenerateJobQuestions(cmd.Context(), a.userID(), description)
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), res.Value, string(res.Source), func(w io.Writer) {
					output.JobQuestions(w, res.Value)
				})
			})
		},
	}
	cmd.Flags().StringVar(&description, "job-description", "", "job description to target")
	cmd.Flags().StringVar(&descriptionFile, "job-file", "", "read the job description from a file")
	return cmd
}

func insightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show market insights for your industry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				in, err := a.svc.IndustryInsights(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), in, in.Source, func(w io.Writer) { output.Insights(w, in) })
			})
		},
	}
}

func roadmapCmd() *cobra.Command {
	var (
		regenerate bool
		complete   string
	)
	cmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Show or build your skill roadmap",
		Long: `Show your three-phase skill roadmap, generating it on first use.

Example:
  careerprep roadmap --complete Docker,Kubernetes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				var (
					rm  *models.SkillRoadmap
					err error
				)
				switch {
				case complete != "":
					rm, err = a.svc.UpdateRoadmapProgress(cmd.Context(), a.userID(), splitList(complete))
				case regenerate:
					rm, err = a.svc.GenerateSkillRoadmap(cmd.Context(), a.userID())
				default:
					rm, err = a.svc.SkillRoadmap(cmd.Context(), a.userID())
				}
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), rm, rm.Source, func(w io.Writer) { output.Roadmap(w, rm) })
			})
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "build a fresh roadmap")
	cmd.Flags().StringVar(&complete, "complete", "", "comma-separated skills you have completed")
	return cmd
}

func challengesCmd() *cobra.Command {
	var (
		language, difficulty string
		fresh                bool
	)
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "List or generate coding challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				var (
					list *coach.ChallengeList
					err  error
				)
				if fresh {
					list, err = a.svc.GenerateChallenges(cmd.Context(), a.userID(), language, difficulty)
				} else {
					list, err = a.svc.Challenges(cmd.Context(), a.userID(), language, difficulty)
				}
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), list, string(list.Source), func(w io.Writer) { output.Challenges(w, list) })
			})
		},
	}
	cmd.Flags().StringVar(&language, "language", "", "programming language (default JavaScript)")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Easy, Medium or Hard")
	cmd.Flags().BoolVar(&fresh, "new", false, "generate new challenges even if some exist")

	var (
		codeFile       string
		passed, failed int
	)
	submitCmd := &cobra.Command{
		Use:   "submit <id>",
		Short: "Record a solution and its test results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(codeFile)
			if err != nil {
				return fmt.Errorf("failed to read code: %w", err)
			}
			if passed < 0 || failed < 0 {
				return fmt.Errorf("test counts must not be negative")
			}

			results := make([]models.TestResult, 0, passed+failed)
			for i := 0; i < passed+failed; i++ {
				results = append(results, models.TestResult{Input: fmt.Sprintf("test %d", i+1), Passed: i < passed})
			}

			return withApp(cmd, func(a *app) error {
				sub, err := a.svc.SubmitChallenge(cmd.Context(), a.userID(), args[0], string(code), results)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), sub, "", func(w io.Writer) { output.Submission(w, sub) })
			})
		},
	}
	submitCmd.Flags().StringVar(&codeFile, "code-file", "", "file holding your solution")
	submitCmd.Flags().IntVar(&passed, "passed", 0, "number of passing tests")
	submitCmd.Flags().IntVar(&failed, "failed", 0, "number of failing tests")
	submitCmd.MarkFlagRequired("code-file")

	hintsCmd := &cobra.Command{
		Use:   "hints <id>",
		Short: "Show the hints of a challenge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				hints, err := a.svc.Hints(cmd.Context(), a.userID(), args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), hints, "", func(w io.Writer) {
					for i, h := range hints {
						fmt.Fprintf(w, "%d. %s\n", i+1, h)
					}
				})
			})
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Show your coding practice statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				stats, err := a.svc.ChallengeProgress(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), stats, "", func(w io.Writer) { output.ChallengeStats(w, stats) })
			})
		},
	}

	cmd.AddCommand(submitCmd, hintsCmd, progressCmd)
	return cmd
}

func questionBankCmd() *cobra.Command {
	var (
		filter  coach.BankFilter
		answers bool
	)
	cmd := &cobra.Command{
		Use:   "question-bank",
		Short: "Browse frequently asked interview questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			qs := coach.AllQuestions(filter)
			if jsonOutput {
				out, err := output.FormatJSON(qs, "", nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}
			output.BankQuestions(cmd.OutOrStdout(), qs, answers)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Company, "company", "", "company, e.g. Google")
	cmd.Flags().StringVar(&filter.Category, "category", "", "category, e.g. DSA or Behavioral")
	cmd.Flags().StringVar(&filter.Difficulty, "difficulty", "", "Easy, Medium or Hard")
	cmd.Flags().StringVar(&filter.Role, "role", "", "role, e.g. Software Engineer")
	cmd.Flags().StringVar(&filter.Search, "search", "", "text to search in questions and tags")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of questions (default 50)")
	cmd.Flags().BoolVar(&answers, "answers", false, "show answers")

	favoriteCmd := &cobra.Command{
		Use:   "favorite <question-id>",
		Short: "Add a question to your favorites, or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				on, err := a.svc.ToggleFavoriteQuestion(cmd.Context(), a.userID(), args[0])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), map[string]bool{"favorited": on}, "", func(w io.Writer) {
					if on {
						fmt.Fprintf(w, "★ Added %s to favorites\n", args[0])
					} else {
						fmt.Fprintf(w, "Removed %s from favorites\n", args[0])
					}
				})
			})
		},
	}

	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				qs, err := a.svc.FavoriteQuestions(cmd.Context(), a.userID())
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), qs, "", func(w io.Writer) { output.BankQuestions(w, qs, answers) })
			})
		},
	}

	favoritesCmd.Flags().BoolVar(&answers, "answers", false, "show answers")

	markCmd := &cobra.Command{
		Use:   "mark <question-id> <not-attempted|attempted|mastered>",
		Short: "Record an attempt at a question",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				p, err := a.svc.MarkQuestionProgress(cmd.Context(), a.userID(), args[0], args[1])
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), p, "", func(w io.Writer) {
					fmt.Fprintf(w, "✓ %s marked %s (attempt %d)\n", p.QuestionID, p.Status, p.Attempts)
				})
			})
		},
	}

	progressCmd := &cobra.Command{
		Use:   "progress",
		Short: "Show your question bank practice statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				report, err := a.svc.QuestionProgress(cmd.Context(), a.userID())
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), report, "", func(w io.Writer) { output.BankProgress(w, report) })
			})
		},
	}

	cmd.AddCommand(favoriteCmd, favoritesCmd, markCmd, progressCmd)
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your assessment analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				d, err := a.svc.Dashboard(cmd.Context(), a.userID())
				if err != nil {
					return profileHint(err)
				}
				return a.emit(cmd.OutOrStdout(), d, "", func(w io.Writer) { output.Dashboard(w, d) })
			})
		},
	}
}

// profileHint points at the fix for errors caused by a missing profile
func profileHint(err error) error {
	switch {
	case errors.Is(err, coach.ErrUserNotFound):
		return fmt.Errorf("%w\nRun 'careerprep profile set --industry <industry> --skills <skills>' first", err)
	case errors.Is(err, coach.ErrNoIndustry):
		return fmt.Errorf("%w\nRun 'careerprep profile set --industry <industry>'", err)
	}
	return err
}
