package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/hupe1980/roster/student"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

// studentFlags holds the record fields accepted by add and update.
type studentFlags struct {
	name   string
	gender string
	phone  string
	course string
	dob    string
}

func (f *studentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Gender")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.course, "course", "", "Enrolled course")
	cmd.Flags().StringVar(&f.dob, "dob", "", "Date of birth (YYYY-MM-DD)")
}

// apply copies the flags the user set onto s.
func (f *studentFlags) apply(cmd *cobra.Command, s *student.Student) error {
	changed := cmd.Flags().Changed
	if changed("name") {
		s.Name = f.name
	}
	if changed("gender") {
		s.Gender = f.gender
	}
	if changed("phone") {
		s.Phone = f.phone
	}
	if changed("course") {
		s.Course = f.course
	}
	if changed("dob") {
		if f.dob == "" {
			s.DateOfBirth = nil
			return nil
		}
		dob, err := time.Parse(dateLayout, f.dob)
		if err != nil {
			return fmt.Errorf("invalid --dob %q: %w", f.dob, err)
		}
		s.DateOfBirth = &dob
	}
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || !student.ValidID(id) {
		return 0, fmt.Errorf("invalid student id %q", arg)
	}
	return id, nil
}

func newStudentCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student",
		Short: "Manage student records",
	}
	cmd.AddCommand(
		newStudentAddCmd(a),
		newStudentGetCmd(a),
		newStudentUpdateCmd(a),
		newStudentDeleteCmd(a),
		newStudentListCmd(a),
		newStudentSearchCmd(a),
		newStudentGenderCmd(a),
		newStudentStatsCmd(a),
	)
	return cmd
}

func newStudentAddCmd(a *app) *cobra.Command {
	var f studentFlags
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a new student",
		Long: `The add command stores a new student record. It fails if the ID is taken.

Example:
  rosterctl student add 42 --name "Ada Lovelace" --gender female --dob 1815-12-10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := student.Student{ID: id}
			if err := f.apply(cmd, &s); err != nil {
				return err
			}
			ok, err := a.students.Add(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("student %d already exists", id)
			}
			return a.printStudents(cmd.OutOrStdout(), s)
		},
	}
	f.register(cmd)
	return cmd
}

func newStudentGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, ok := a.students.Find(id)
			if !ok {
				return fmt.Errorf("student %d not found", id)
			}
			return a.printStudents(cmd.OutOrStdout(), s)
		},
	}
}

func newStudentUpdateCmd(a *app) *cobra.Command {
	var f studentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing student",
		Long: `The update command changes only the fields given as flags.

Example:
  rosterctl student update 42 --course "Analytical Engines"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, ok := a.students.Find(id)
			if !ok {
				return fmt.Errorf("student %d not found", id)
			}
			if err := f.apply(cmd, &s); err != nil {
				return err
			}
			ok, err = a.students.Update(cmd.Context(), s)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("student %d not found", id)
			}
			return a.printStudents(cmd.OutOrStdout(), s)
		},
	}
	f.register(cmd)
	return cmd
}

func newStudentDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.students.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("student %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted student %d\n", id)
			return nil
		},
	}
}

func newStudentListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all students ordered by ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printStudents(cmd.OutOrStdout(), a.students.All()...)
		},
	}
}

func newStudentSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find students whose name contains the query, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStudents(cmd.OutOrStdout(), a.students.SearchByName(args[0])...)
		},
	}
}

func newStudentGenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gender <gender>",
		Short: "List students of one gender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStudents(cmd.OutOrStdout(), a.students.ByGender(args[0])...)
		},
	}
}

func newStudentStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and hash table statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum := a.students.Summary()
			metrics := a.studentMetrics.GetStats()
			w := cmd.OutOrStdout()

			if a.jsonOut {
				return printJSON(w, map[string]any{
					"summary": sum,
					"load": map[string]any{
						"count":     metrics.LoadCount,
						"avg_nanos": metrics.LoadAvgNanos,
					},
				})
			}

			fmt.Fprintf(w, "Students:        %d\n", sum.Count)
			for g, n := range sum.Genders {
				if g == "" {
					g = "(unspecified)"
				}
				fmt.Fprintf(w, "  %-14s %d\n", g+":", n)
			}
			fmt.Fprintf(w, "Capacity:        %d\n", sum.Table.Capacity)
			fmt.Fprintf(w, "Load factor:     %.2f\n", sum.Table.LoadFactor)
			fmt.Fprintf(w, "Used buckets:    %d\n", sum.Table.UsedBuckets)
			fmt.Fprintf(w, "Longest chain:   %d\n", sum.Table.LongestChain)
			fmt.Fprintf(w, "Resizes:         %d\n", sum.Table.Resizes)
			fmt.Fprintf(w, "Load time:       %s\n", time.Duration(metrics.LoadAvgNanos))
			return nil
		},
	}
}

func (a *app) printStudents(w io.Writer, students ...student.Student) error {
	if a.jsonOut {
		if students == nil {
			students = []student.Student{}
		}
		return printJSON(w, students)
	}
	if len(students) == 0 {
		fmt.Fprintln(w, "no students")
		return nil
	}
	fmt.Fprintf(w, "%-8s %-24s %-8s %-14s %-20s %s\n", "ID", "NAME", "GENDER", "PHONE", "COURSE", "BORN")
	for _, s := range students {
		born := ""
		if s.DateOfBirth != nil {
			born = s.DateOfBirth.Format(dateLayout)
		}
		fmt.Fprintf(w, "%-8d %-24s %-8s %-14s %-20s %s\n", s.ID, s.Name, s.Gender, s.Phone, s.Course, born)
	}
	return nil
}
