package arr

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ValentinKolb/dArr/lib/array"
	"github.com/ValentinKolb/dArr/lib/value"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [array] [index] [value]",
		Short: "Stores a JSON primitive (or undefined) at an index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			v, err := value.ParseJSON(args[2])
			if err != nil {
				return err
			}
			if err := rpcStore.Put(args[0], index, v); err != nil {
				return err
			}
			fmt.Println("put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [array] [index]",
		Short: "Reads the value at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			v, err := rpcStore.Get(args[0], index)
			if err != nil {
				return err
			}
			fmt.Printf("array=%s, index=%d, value=%s\n", args[0], index, v)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [array] [index]",
		Short: "Deletes the value at an index, the length is kept",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			deleted, err := rpcStore.Delete(args[0], index)
			if err != nil {
				return err
			}
			fmt.Printf("array=%s, index=%d, deleted=%t\n", args[0], index, deleted)
			return nil
		},
	}
	lenCmd = &cobra.Command{
		Use:   "len [array]",
		Short: "Prints the length of an array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := rpcStore.Length(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("array=%s, length=%d\n", args[0], length)
			return nil
		},
	}
	setLenCmd = &cobra.Command{
		Use:   "setlen [array] [length]",
		Short: "Sets the length of an array, values at or above it are removed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("length must be a number: %w", err)
			}
			if err := rpcStore.SetLength(args[0], length); err != nil {
				return err
			}
			fmt.Println("setlen successfully")
			return nil
		},
	}
	sortCmd = &cobra.Command{
		Use:   "sort [array]",
		Short: "Sorts the defined values of an array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flag, _ := cmd.Flags().GetString("order")
			order, err := array.ParseSortOrder(flag)
			if err != nil {
				return err
			}
			if err := rpcStore.Sort(args[0], order); err != nil {
				return err
			}
			fmt.Printf("sorted successfully (%s)\n", order)
			return nil
		},
	}
	indicesCmd = &cobra.Command{
		Use:   "indices [array]",
		Short: "Prints the indices holding a value, ascending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := rpcStore.Indices(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("array=%s, count=%d, indices=%v\n", args[0], len(indices), indices)
			return nil
		},
	}
	dumpCmd = &cobra.Command{
		Use:   "dump [array]",
		Short: "Prints every stored value of an array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := dumpArray(rpcStore, args[0])
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Print(line)
			}
			return nil
		},
	}
	dropCmd = &cobra.Command{
		Use:   "drop [array]",
		Short: "Removes an array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dropped, err := rpcStore.Drop(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("array=%s, dropped=%t\n", args[0], dropped)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info [array]",
		Short: "Prints engine statistics of an array as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := rpcStore.Info(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	diffCmd = &cobra.Command{
		Use:   "diff [array-a] [array-b]",
		Short: "Prints a unified diff of the stored values of two arrays",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			context, _ := cmd.Flags().GetInt("context")
			out, err := diffArrays(rpcStore, args[0], args[1], context)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Println("arrays are equal")
				return nil
			}
			fmt.Print(out)
			return nil
		},
	}
)

func init() {
	sortCmd.Flags().String("order", "string", "sort order (string, string-desc, numeric, numeric-desc)")
	diffCmd.Flags().Int("context", 3, "number of unchanged lines around a change")
}

// parseIndex parses a decimal array index
func parseIndex(s string) (uint32, error) {
	index, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("index must be a number between 0 and %d: %w", array.MaxArrayIndex, err)
	}
	return uint32(index), nil
}
