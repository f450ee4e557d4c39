package main

import (
	"fmt"

	"simkas/internal/model"
	"simkas/internal/service"

	"github.com/spf13/cobra"
)

// createUserCmd is the only way to assign BENDAHARA_KELAS / ADMIN_ANGKATAN.
func createUserCmd() *cobra.Command {
	var (
		in       service.RegisterInput
		role     string
		classID  uint64
		cohortID uint64
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with an explicit role",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if classID > 0 {
				in.ClassID = &classID
			}
			if cohortID > 0 {
				in.CohortID = &cohortID
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.userSvc.CreateUser(cmd.Context(), in, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s) role=%s\n", user.ID, user.NIM, user.Role)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.NIM, "nim", "", "student number")
	f.StringVar(&in.Name, "name", "", "display name")
	f.StringVar(&in.Email, "email", "", "e-mail address")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Password, "password", "", "initial password (min 6 chars)")
	f.StringVar(&role, "role", string(model.RoleMember), "ANGGOTA, BENDAHARA_KELAS or ADMIN_ANGKATAN")
	f.Uint64Var(&classID, "class", 0, "class id")
	f.Uint64Var(&cohortID, "cohort", 0, "cohort id")
	for _, name := range []string{"nim", "name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
